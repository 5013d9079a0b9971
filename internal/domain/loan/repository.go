package loan

import "context"

type Repository interface {
	// Create inserts l and sets l.ID to the next registry id.
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	GetByAddressForUpdate(ctx context.Context, address string) (*Loan, error)
	List(ctx context.Context, afterID uint64, limit int) ([]Loan, error)
	ListByState(ctx context.Context, state State) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}

package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/infrastructure/db"
	"salary-stream-loan/pkg/amount"
	"salary-stream-loan/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with every service table.
// One connection only: each new :memory: connection is a fresh empty database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func makeLoan(t *testing.T, borrower string) *domain.Loan {
	t.Helper()
	l, err := domain.New(id.NewAccount(), domain.Terms{
		Principal:             amount.MustParse("1000000000000000000000"),
		AnnualInterestRatePct: 10,
		TermMonths:            12,
		Employer:              "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
		Borrower:              borrower,
		SettlementToken:       "fdaix",
	}, time.Now())
	if err != nil {
		t.Fatalf("new loan: %v", err)
	}
	return l
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		l := makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if l.ID != want {
			t.Fatalf("id=%d want %d", l.ID, want)
		}
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	l := makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Address != l.Address || got.Borrower != l.Borrower || got.State != domain.StatePending {
		t.Errorf("unexpected loan: %+v", got)
	}
	if got.Principal.String() != "1000000000000000000000" {
		t.Errorf("principal round trip: %s", got.Principal)
	}
	if !got.PaymentFlowRate.IsZero() {
		t.Errorf("payment rate before funding: %s", got.PaymentFlowRate)
	}
}

func TestGetByAddressForUpdate(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	l := makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByAddressForUpdate(ctx, l.Address)
	if err != nil {
		t.Fatalf("GetByAddressForUpdate: %v", err)
	}
	if got.ID != l.ID {
		t.Fatalf("id=%d want %d", got.ID, l.ID)
	}
	if _, err := repo.GetByAddressForUpdate(ctx, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSavePersistsFunding(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	l := makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := l.Fund(ctx, "11111111111111111111111111111111", time.Now()); err != nil {
		t.Fatalf("Fund: %v", err)
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.State != domain.StateActive || got.LenderID() != "11111111111111111111111111111111" {
		t.Fatalf("funding not persisted: %+v", got)
	}
	if got.PaymentFlowRate.String() != "35365226337448" {
		t.Fatalf("payment rate=%s", got.PaymentFlowRate)
	}
	if got.StartTime == nil {
		t.Fatalf("start time not persisted")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))

	_, err := repo.GetByID(context.Background(), 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPagesByID(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")); err != nil {
			t.Fatal(err)
		}
	}

	page, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestListByState(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	pending := makeLoan(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	active := makeLoan(t, "cccccccccccccccccccccccccccccccc")
	for _, l := range []*domain.Loan{pending, active} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
	if err := active.Fund(ctx, "11111111111111111111111111111111", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, active); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListByState(ctx, domain.StateActive)
	if err != nil {
		t.Fatalf("ListByState: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("unexpected active loans: %+v", got)
	}
}

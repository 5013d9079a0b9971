package db

import (
	"time"

	"salary-stream-loan/internal/domain/loan"
	"salary-stream-loan/internal/domain/stream"
	"salary-stream-loan/internal/domain/token"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormWithDialector lets tests hand in a dialector backed by sqlmock or sqlite.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{&loan.Loan{}, &stream.Flow{}, &token.Balance{}, &token.Allowance{}}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

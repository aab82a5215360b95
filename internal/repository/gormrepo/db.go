package gormrepo

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to a relational database. Duplicate-key violations surface as
// gorm.ErrDuplicatedKey via TranslateError.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// One connection keeps :memory: databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Member{},
		&domain.Invoice{},
		&domain.Trainer{},
		&domain.Visitor{},
		&domain.FollowUp{},
		&domain.Session{},
		&domain.Activity{},
		&domain.CheckIn{},
		&domain.User{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRepositories wires every collection onto db.
func NewRepositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Members:    NewMemberRepository(db),
		Invoices:   NewInvoiceRepository(db),
		Trainers:   NewTrainerRepository(db),
		Visitors:   &visitorRepo{newStore[domain.Visitor](db, repository.VisitorSchema)},
		FollowUps:  &followUpRepo{newStore[domain.FollowUp](db, repository.FollowUpSchema)},
		Sessions:   &sessionRepo{newStore[domain.Session](db, repository.SessionSchema)},
		Activities: NewActivityRepository(db),
		CheckIns:   &checkInRepo{newStore[domain.CheckIn](db, repository.CheckInSchema)},
		Users:      NewUserRepository(db),
	}
}

type visitorRepo struct{ store[domain.Visitor] }

type followUpRepo struct{ store[domain.FollowUp] }

type sessionRepo struct{ store[domain.Session] }

type checkInRepo struct{ store[domain.CheckIn] }

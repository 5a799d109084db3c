package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/faizmokh/bridgelog/internal/logbook"
)

// LedgerState is the hosted row: one jsonb document per user.
type LedgerState struct {
	UserID    string    `gorm:"primaryKey;type:text"`
	State     []byte    `gorm:"type:jsonb;not null;default:'{}'::jsonb"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// TableName pins the table name.
func (LedgerState) TableName() string { return "ledger_states" }

// PostgresStore keeps ledgers in Postgres through gorm.
type PostgresStore struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and migrates the ledger table.
func OpenPostgres(ctx context.Context, dsn string, now func() time.Time) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store: DATABASE_URL is not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresStore(ctx, gdb, now)
}

// NewPostgresStore wraps an open gorm handle and migrates the ledger table.
func NewPostgresStore(ctx context.Context, gdb *gorm.DB, now func() time.Time) (*PostgresStore, error) {
	if err := gdb.WithContext(ctx).AutoMigrate(&LedgerState{}); err != nil {
		return nil, fmt.Errorf("migrate ledger_states: %w", err)
	}
	return &PostgresStore{db: gdb, now: clockOrNow(now)}, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, identity string) (logbook.State, bool, error) {
	var row LedgerState
	err := s.db.WithContext(ctx).Where("user_id = ?", identity).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return logbook.State{}, false, nil
	}
	if err != nil {
		return logbook.State{}, false, fmt.Errorf("load ledger %q: %w", identity, err)
	}
	if len(row.State) == 0 {
		return logbook.State{}, false, nil
	}

	state, err := decode(row.State, s.now)
	if err != nil {
		return logbook.State{}, false, err
	}
	return state, true, nil
}

// Put implements Store as an upsert on user_id.
func (s *PostgresStore) Put(ctx context.Context, identity string, state logbook.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	row := LedgerState{UserID: identity, State: data, UpdatedAt: s.now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save ledger %q: %w", identity, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

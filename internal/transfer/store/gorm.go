package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgerror"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

// transactionModel is the gorm row. Amount is kept as text: sqlite's numeric
// affinity would round long decimals to REAL. Signals is a JSON document, NULL
// when enrichment found nothing.
type transactionModel struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement"`
	SourceAccount  string          `gorm:"index"`
	TargetAccount  string          `gorm:"index"`
	Amount         decimal.Decimal `gorm:"type:text;not null"`
	SuspectedFraud bool            `gorm:"not null"`
	RiskScore      *float64
	Verdict        string          `gorm:"size:16;not null;index"`
	Signals        *entity.Signals `gorm:"serializer:json;type:text"`
	CreatedAt      time.Time
}

func (transactionModel) TableName() string {
	return "transactions"
}

func toModel(tx entity.Transaction) transactionModel {
	return transactionModel{
		SourceAccount:  tx.SourceAccount,
		TargetAccount:  tx.TargetAccount,
		Amount:         tx.Amount,
		SuspectedFraud: tx.SuspectedFraud,
		RiskScore:      tx.RiskScore,
		Verdict:        string(tx.Verdict),
		Signals:        tx.Signals,
		CreatedAt:      tx.CreatedAt,
	}
}

func (m transactionModel) toEntity() entity.Transaction {
	return entity.Transaction{
		ID:             strconv.FormatUint(m.ID, 10),
		SourceAccount:  m.SourceAccount,
		TargetAccount:  m.TargetAccount,
		Amount:         m.Amount,
		CreatedAt:      m.CreatedAt.UTC(),
		SuspectedFraud: m.SuspectedFraud,
		RiskScore:      m.RiskScore,
		Verdict:        entity.Verdict(m.Verdict),
		Signals:        m.Signals,
	}
}

// GormStore persists transactions in a SQLite file through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewSQLiteStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewGormStore(db)
}

// NewGormStore migrates the schema on db and returns a store over it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&transactionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, tx entity.Transaction) (entity.Transaction, error) {
	if !tx.Resolved() {
		return entity.Transaction{}, entity.ErrUnresolvedVerdict
	}

	m := toModel(tx)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	saved := m.toEntity()
	saved.CreatedAt = tx.CreatedAt

	return saved, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (entity.Transaction, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return entity.Transaction{}, pkgerror.ErrNotFound
	}

	var m transactionModel
	err = s.db.WithContext(ctx).First(&m, "id = ?", n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Transaction{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Transaction{}, fmt.Errorf("failed to load transaction: %w", err)
	}

	return m.toEntity(), nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

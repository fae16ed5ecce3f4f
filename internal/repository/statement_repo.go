package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

type StatementRepository struct {
	db *gorm.DB
}

func NewStatementRepository(db *gorm.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// Expose DB for wiring
func (r *StatementRepository) DB() *gorm.DB {
	return r.db
}

func (r *StatementRepository) Create(s *models.BankStatement) error {
	return r.db.Create(s).Error
}

func (r *StatementRepository) Update(s *models.BankStatement) error {
	return r.db.Save(s).Error
}

// UpdateStatus persists a lifecycle transition immediately, so a crash
// mid-ingestion leaves a diagnosable state.
func (r *StatementRepository) UpdateStatus(id uuid.UUID, status models.StatementStatus, errorMessage string) error {
	return r.db.Model(&models.BankStatement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
		}).Error
}

func (r *StatementRepository) GetByID(id uuid.UUID) (*models.BankStatement, error) {
	var s models.BankStatement
	err := r.db.Preload("Transactions").First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByHash returns the statement already imported with this file hash for
// the company, or nil.
func (r *StatementRepository) FindByHash(companyID uuid.UUID, hash string) (*models.BankStatement, error) {
	var s models.BankStatement
	err := r.db.First(&s, "company_id = ? AND file_hash = ?", companyID, hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByPeriod returns another statement covering the same bank account and
// period for the company, excluding the given statement ID.
func (r *StatementRepository) FindByPeriod(companyID uuid.UUID, bankCode, accountNumber string, from, to time.Time, excludeID uuid.UUID) (*models.BankStatement, error) {
	var s models.BankStatement
	err := r.db.
		Where("company_id = ? AND bank_code = ? AND account_number = ?", companyID, bankCode, accountNumber).
		Where("period_from = ? AND period_to = ?", from, to).
		Where("id <> ?", excludeID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatementRepository) List(companyID uuid.UUID) ([]models.BankStatement, error) {
	var statements []models.BankStatement
	err := r.db.
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&statements).Error
	return statements, err
}

// RecomputeAggregates rebuilds the derived counters from the persisted
// transactions. Called after parsing and after every match mutation.
func (r *StatementRepository) RecomputeAggregates(id uuid.UUID) error {
	var txs []models.BankTransaction
	if err := r.db.Where("statement_id = ?", id).Find(&txs).Error; err != nil {
		return err
	}

	credits, debits := decimal.Zero, decimal.Zero
	creditCount, debitCount, matched := 0, 0, 0
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			debitCount++
			debits = debits.Add(tx.Amount.Abs())
		} else {
			creditCount++
			credits = credits.Add(tx.Amount)
		}
		if tx.Matched {
			matched++
		}
	}

	return r.db.Model(&models.BankStatement{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_transactions": len(txs),
			"credit_count":       creditCount,
			"debit_count":        debitCount,
			"total_credits":      credits,
			"total_debits":       debits,
			"matched_count":      matched,
		}).Error
}

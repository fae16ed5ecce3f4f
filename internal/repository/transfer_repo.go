package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// UsedInBankCandidates returns transfers eligible for matching: exact amount,
// execution date inside the window, and only from batches already flagged as
// used in the bank.
func (r *TransferRepository) UsedInBankCandidates(companyID uuid.UUID, amount decimal.Decimal, from, to time.Time) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.
		Joins("JOIN transfer_batches ON transfer_batches.id = transfers.batch_id").
		Where("transfer_batches.used_in_bank = ?", true).
		Where("transfers.company_id = ?", companyID).
		Where("transfers.amount = ?", amount).
		Where("transfers.execution_date BETWEEN ? AND ?", from, to).
		Order("transfers.id ASC").
		Find(&transfers).Error
	return transfers, err
}

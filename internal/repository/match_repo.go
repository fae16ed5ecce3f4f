package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

// MatchRepository owns the transaction↔invoice join rows, the other-cost
// records and the manual-match audit trail.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ReplaceInvoiceMatches atomically swaps the transaction's join rows for the
// given set and persists the transaction's own match state with them.
func (r *MatchRepository) ReplaceInvoiceMatches(tx *models.BankTransaction, rows []models.BankTransactionInvoiceMatch) error {
	return r.db.Transaction(func(db *gorm.DB) error {
		if err := db.Where("transaction_id = ?", tx.ID).
			Delete(&models.BankTransactionInvoiceMatch{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := db.Create(&rows).Error; err != nil {
				return err
			}
		}
		return db.Save(tx).Error
	})
}

func (r *MatchRepository) InvoiceMatchesByTransaction(txID uuid.UUID) ([]models.BankTransactionInvoiceMatch, error) {
	var rows []models.BankTransactionInvoiceMatch
	err := r.db.Where("transaction_id = ?", txID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *MatchRepository) CreateOtherCost(cost *models.OtherCost) error {
	return r.db.Create(cost).Error
}

func (r *MatchRepository) CreateAuditLog(entry *models.MatchAuditLog) error {
	return r.db.Create(entry).Error
}

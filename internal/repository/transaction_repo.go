package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateBatch inserts all rows of one statement in a single transaction.
func (r *TransactionRepository) CreateBatch(txs []*models.BankTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.Create(txs).Error
}

func (r *TransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	if err := r.db.First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Save(tx *models.BankTransaction) error {
	return r.db.Save(tx).Error
}

// UnmatchedByStatement returns the statement's transactions still awaiting a
// match, in insertion order.
func (r *TransactionRepository) UnmatchedByStatement(statementID uuid.UUID) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.
		Where("statement_id = ? AND matched = ?", statementID, false).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

// ListByStatement pages through a statement's transactions with cursor
// pagination and an optional match filter.
func (r *TransactionRepository) ListByStatement(statementID uuid.UUID, matched *bool, cursor string, limit int) ([]models.BankTransaction, string, bool, error) {
	query := r.db.
		Where("statement_id = ?", statementID).
		Order("id ASC").
		Limit(limit + 1)

	if matched != nil {
		query = query.Where("matched = ?", *matched)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	var txs []models.BankTransaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	nextCursor := ""
	if len(txs) > limit {
		hasMore = true
		nextCursor = txs[limit-1].ID.String()
		txs = txs[:limit]
	}
	return txs, nextCursor, hasMore, nil
}

// ReimbursementCandidates returns unmatched transactions of the same company
// booked within the window around the given date, excluding the transaction
// itself. Ordered by ID for a deterministic pick.
func (r *TransactionRepository) ReimbursementCandidates(companyID uuid.UUID, around time.Time, windowDays int, excludeID uuid.UUID) ([]models.BankTransaction, error) {
	from := around.AddDate(0, 0, -windowDays)
	to := around.AddDate(0, 0, windowDays)

	var txs []models.BankTransaction
	err := r.db.
		Where("company_id = ? AND matched = ?", companyID, false).
		Where("booking_date BETWEEN ? AND ?", from, to).
		Where("id <> ?", excludeID).
		Order("id ASC").
		Find(&txs).Error
	return txs, err
}

// SaveReimbursementPair persists both sides of a reimbursement pair in one
// database transaction, so a half-paired state is never visible.
func (r *TransactionRepository) SaveReimbursementPair(a, b *models.BankTransaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(a).Error; err != nil {
			return err
		}
		return tx.Save(b).Error
	})
}

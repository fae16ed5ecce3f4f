package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Expose DB if needed
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

// Candidates returns the invoice pool the matching cascade works on: same
// company, non-STORNO, any payment status (PAID stays in for reconciliation
// verification), effective due date inside [from, to]. Ordered by ID so
// first-hit and tie-break behavior is deterministic.
func (r *InvoiceRepository) Candidates(companyID uuid.UUID, from, to time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.
		Where("company_id = ?", companyID).
		Where("invoice_direction IN ?", []models.InvoiceDirection{models.InvoiceInbound, models.InvoiceOutbound}).
		Where("payment_status IN ?", []models.PaymentStatus{models.PaymentUnpaid, models.PaymentPrepared, models.PaymentPaid}).
		Where("invoice_operation <> ?", models.OperationStorno).
		Where("COALESCE(payment_due_date, fulfillment_date) BETWEEN ? AND ?", from, to).
		Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) GetByID(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByIDs(ids []uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) Save(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}

func (r *InvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

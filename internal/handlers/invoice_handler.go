package handler

import (
	"encoding/csv"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bank-reconciliation-backend/internal/bank"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/repository"
)

type InvoiceHandler struct {
	invoices *repository.InvoiceRepository
	log      zerolog.Logger
}

func NewInvoiceHandler(invoices *repository.InvoiceRepository, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, log: log.With().Str("component", "invoice_handler").Logger()}
}

// Upload seeds invoices from a CSV export. Expected columns:
// nav_invoice_number, direction, operation, supplier_name,
// supplier_tax_number, supplier_bank_account, gross_amount, currency,
// payment_due_date, fulfillment_date. Malformed rows are skipped and counted.
func (h *InvoiceHandler) Upload(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read CSV header"})
		return
	}

	inserted, skipped, rowNum := 0, 0, 0
	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			h.log.Warn().Int("row", rowNum).Err(err).Msg("unreadable CSV row skipped")
			skipped++
			continue
		}
		if len(record) < 8 {
			skipped++
			continue
		}

		invoice, err := h.rowToInvoice(companyID, record)
		if err != nil {
			h.log.Warn().Int("row", rowNum).Err(err).Msg("invalid invoice row skipped")
			skipped++
			continue
		}
		if err := h.invoices.Create(invoice); err != nil {
			h.log.Warn().Int("row", rowNum).Err(err).Msg("invoice insert failed")
			skipped++
			continue
		}
		inserted++
	}

	h.log.Info().
		Str("file", header.Filename).
		Int("inserted", inserted).
		Int("skipped", skipped).
		Msg("invoice CSV processed")

	c.JSON(http.StatusOK, gin.H{
		"file":     header.Filename,
		"inserted": inserted,
		"skipped":  skipped,
	})
}

func (h *InvoiceHandler) rowToInvoice(companyID uuid.UUID, record []string) (*models.Invoice, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	direction := models.InvoiceDirection(strings.ToUpper(record[1]))
	if direction != models.InvoiceInbound && direction != models.InvoiceOutbound {
		return nil, &invoiceRowError{"invalid direction: " + record[1]}
	}
	amount, err := bank.CleanAmount(record[6])
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(record[7])
	if currency == "" {
		currency = "HUF"
	}

	invoice := &models.Invoice{
		ID:                        uuid.New(),
		CompanyID:                 companyID,
		NavInvoiceNumber:          record[0],
		InvoiceDirection:          direction,
		InvoiceOperation:          strings.ToUpper(record[2]),
		SupplierName:              record[3],
		SupplierTaxNumber:         record[4],
		SupplierBankAccountNumber: record[5],
		InvoiceGrossAmount:        amount,
		Currency:                  currency,
		PaymentStatus:             models.PaymentUnpaid,
	}
	if len(record) > 8 && record[8] != "" {
		due, err := bank.ParseDate(record[8])
		if err != nil {
			return nil, err
		}
		invoice.PaymentDueDate = &due
	}
	if len(record) > 9 && record[9] != "" {
		fulfilled, err := bank.ParseDate(record[9])
		if err != nil {
			return nil, err
		}
		invoice.FulfillmentDate = &fulfilled
	}
	if invoice.PaymentDueDate == nil && invoice.FulfillmentDate == nil {
		now := time.Now()
		invoice.FulfillmentDate = &now
	}
	return invoice, nil
}

type invoiceRowError struct{ reason string }

func (e *invoiceRowError) Error() string { return e.reason }

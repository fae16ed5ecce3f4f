package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-backend/internal/models"
)

func TestManualMatch(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	booking := date(2025, 1, 14)

	inv := f.invoice(models.InvoiceInbound, "100000", date(2025, 1, 20))
	tx := f.transaction("-95000", booking) // operator overrides the tolerance

	got, err := f.svc.ManualMatch(tx.ID, inv.ID, &userID, "confirmed by phone")
	require.NoError(t, err)

	assert.True(t, got.Matched)
	assert.Equal(t, models.MatchManual, got.MatchMethod)
	assert.True(t, got.MatchConfidence.Equal(ConfidenceExact))
	require.NotNil(t, got.MatchedByID)
	assert.Equal(t, userID, *got.MatchedByID)
	assert.Equal(t, "confirmed by phone", got.MatchNotes)

	assert.Equal(t, models.PaymentPaid, inv.PaymentStatus)
	assert.False(t, inv.AutoMarkedPaid, "operator matches are not auto-marks")

	require.Len(t, f.matches.audit, 1)
	assert.Equal(t, "manual_match", f.matches.audit[0].Action)
	assert.Equal(t, 1, f.statements.recomputed)
}

func TestManualMatchUnknownInvoice(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction("-95000", date(2025, 1, 14))

	_, err := f.svc.ManualMatch(tx.ID, uuid.New(), nil, "")
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestManualBatchMatch(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	a := f.invoice(models.InvoiceInbound, "60000", date(2025, 1, 20))
	a.SupplierTaxNumber = "12345678-2-42"
	b := f.invoice(models.InvoiceInbound, "40000", date(2025, 1, 22))
	b.SupplierTaxNumber = "12345678-2-42"

	tx := f.transaction("-100000", booking)

	got, err := f.svc.ManualBatchMatch(tx.ID, []uuid.UUID{a.ID, b.ID}, nil, "two invoices, one payment")
	require.NoError(t, err)

	assert.True(t, got.Matched)
	assert.Equal(t, models.MatchManualBatch, got.MatchMethod)
	assert.Nil(t, got.MatchedInvoiceID, "batch state lives on the join rows")

	rows := f.matches.rows[tx.ID]
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, models.MatchManualBatch, row.MatchMethod)
		assert.True(t, row.MatchConfidence.Equal(ConfidenceExact))
	}

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		stored, err := f.invoices.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
		assert.False(t, stored.AutoMarkedPaid)
	}
}

func TestManualBatchMatchTotalWithinTolerance(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	a := f.invoice(models.InvoiceInbound, "60000", date(2025, 1, 20))
	a.SupplierTaxNumber = "12345678-2-42"
	b := f.invoice(models.InvoiceInbound, "40500", date(2025, 1, 22)) // total 100500, 0.5% off
	b.SupplierTaxNumber = "12345678-2-42"

	tx := f.transaction("-100000", booking)

	_, err := f.svc.ManualBatchMatch(tx.ID, []uuid.UUID{a.ID, b.ID}, nil, "")
	assert.NoError(t, err)
}

func TestManualBatchMatchRejectsMixedSuppliers(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	a := f.invoice(models.InvoiceInbound, "60000", date(2025, 1, 20))
	a.SupplierTaxNumber = "12345678-2-42"
	b := f.invoice(models.InvoiceInbound, "40000", date(2025, 1, 22))
	b.SupplierTaxNumber = "87654321-2-13"

	tx := f.transaction("-100000", booking)

	_, err := f.svc.ManualBatchMatch(tx.ID, []uuid.UUID{a.ID, b.ID}, nil, "")
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	assert.False(t, tx.Matched, "nothing written on validation failure")
}

func TestManualBatchMatchRejectsTotalMismatch(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	a := f.invoice(models.InvoiceInbound, "60000", date(2025, 1, 20))
	a.SupplierTaxNumber = "12345678-2-42"
	b := f.invoice(models.InvoiceInbound, "60000", date(2025, 1, 22))
	b.SupplierTaxNumber = "12345678-2-42"

	tx := f.transaction("-100000", booking)

	_, err := f.svc.ManualBatchMatch(tx.ID, []uuid.UUID{a.ID, b.ID}, nil, "")
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestManualBatchMatchRejectsEmptyList(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction("-100000", date(2025, 1, 14))

	_, err := f.svc.ManualBatchMatch(tx.ID, nil, nil, "")
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestUnmatch(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	inv := f.invoice(models.InvoiceInbound, "100000", date(2025, 1, 20))
	tx := f.transaction("-100000", booking)

	_, err := f.svc.ManualMatch(tx.ID, inv.ID, nil, "")
	require.NoError(t, err)

	got, err := f.svc.Unmatch(tx.ID, nil, "wrong invoice")
	require.NoError(t, err)

	assert.False(t, got.Matched)
	assert.Nil(t, got.MatchedInvoiceID)
	assert.Empty(t, got.MatchMethod)
	assert.True(t, got.MatchConfidence.IsZero())

	require.Len(t, f.matches.audit, 2)
	assert.Equal(t, "unmatch", f.matches.audit[1].Action)
	assert.Equal(t, "wrong invoice", f.matches.audit[1].Reason)
}

func TestUnmatchDissolvesReimbursementPair(t *testing.T) {
	f := newFixture(t)

	debit := f.transaction("-25000", date(2025, 1, 14))
	credit := f.transaction("25000", date(2025, 1, 15))

	matched, err := f.svc.MatchTransaction(debit)
	require.NoError(t, err)
	require.True(t, matched)

	_, err = f.svc.Unmatch(debit.ID, nil, "not a reimbursement")
	require.NoError(t, err)

	for _, id := range []uuid.UUID{debit.ID, credit.ID} {
		tx, err := f.txs.GetByID(id)
		require.NoError(t, err)
		assert.False(t, tx.Matched)
		assert.Nil(t, tx.MatchedReimbursementID)
	}
}

func TestApproveMatch(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	inv := f.invoice(models.InvoiceInbound, "75000", date(2025, 1, 20))
	tx := f.transaction("-75000", booking)

	matched, err := f.svc.MatchTransaction(tx)
	require.NoError(t, err)
	require.True(t, matched)
	require.True(t, tx.MatchConfidence.Equal(ConfidenceAmountDate))

	userID := uuid.New()
	got, err := f.svc.ApproveMatch(tx.ID, &userID, "checked against the invoice PDF")
	require.NoError(t, err)

	assert.True(t, got.MatchConfidence.Equal(ConfidenceExact))
	assert.Contains(t, got.MatchNotes, "checked against the invoice PDF")
	require.NotNil(t, got.MatchedInvoiceID)
	assert.Equal(t, inv.ID, *got.MatchedInvoiceID)
}

func TestApproveRequiresExistingMatch(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction("-75000", date(2025, 1, 14))

	_, err := f.svc.ApproveMatch(tx.ID, nil, "")
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestRematchRunsCascadeAgain(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	wrong := f.invoice(models.InvoiceInbound, "123456", date(2025, 1, 29))
	right := f.invoice(models.InvoiceInbound, "100000", date(2025, 1, 20))
	right.NavInvoiceNumber = "2025-000130"

	tx := f.transaction("-100000", booking)
	tx.Reference = "2025-000130"

	_, err := f.svc.ManualMatch(tx.ID, wrong.ID, nil, "oops")
	require.NoError(t, err)

	got, err := f.svc.Rematch(tx.ID, nil)
	require.NoError(t, err)

	assert.True(t, got.Matched)
	assert.Equal(t, models.MatchReferenceExact, got.MatchMethod)
	require.NotNil(t, got.MatchedInvoiceID)
	assert.Equal(t, right.ID, *got.MatchedInvoiceID)
}

func TestAuditTrailTimestamps(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(models.InvoiceInbound, "100000", date(2025, 1, 20))
	tx := f.transaction("-100000", date(2025, 1, 14))

	before := time.Now().Add(-time.Second)
	_, err := f.svc.ManualMatch(tx.ID, inv.ID, nil, "")
	require.NoError(t, err)

	require.Len(t, f.matches.audit, 1)
	assert.True(t, f.matches.audit[0].CreatedAt.After(before))
	assert.Equal(t, tx.ID, f.matches.audit[0].TransactionID)
}

func TestManualBatchMatchAmountConservation(t *testing.T) {
	f := newFixture(t)
	booking := date(2025, 1, 14)

	invoices := make([]uuid.UUID, 0, 3)
	total := decimal.Zero
	for _, gross := range []string{"10000", "25000", "65000"} {
		inv := f.invoice(models.InvoiceInbound, gross, date(2025, 1, 20))
		inv.SupplierTaxNumber = "12345678-2-42"
		invoices = append(invoices, inv.ID)
		total = total.Add(inv.InvoiceGrossAmount)
	}

	tx := f.transaction("-"+total.String(), booking)

	_, err := f.svc.ManualBatchMatch(tx.ID, invoices, nil, "")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, row := range f.matches.rows[tx.ID] {
		inv, err := f.invoices.GetByID(row.InvoiceID)
		require.NoError(t, err)
		sum = sum.Add(inv.InvoiceGrossAmount)
	}
	assert.True(t, sum.Equal(tx.Amount.Abs()), "join rows cover the full payment")
}

package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/models"
)

// ValidationError rejects a manual-match operation before any mutation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ManualMatch links one transaction to one invoice by operator decision.
// Confidence is 1.00 and the invoice is marked paid on their behalf.
func (s *Service) ManualMatch(txID, invoiceID uuid.UUID, userID *uuid.UUID, notes string) (*models.BankTransaction, error) {
	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoices.GetByID(invoiceID)
	if err != nil {
		return nil, &ValidationError{Reason: "invoice not found"}
	}

	previous := tx.MatchedInvoiceID
	now := time.Now()

	tx.ClearMatch()
	tx.Matched = true
	tx.MatchedInvoiceID = &invoice.ID
	tx.MatchConfidence = ConfidenceExact
	tx.MatchMethod = models.MatchManual
	tx.MatchedAt = &now
	tx.MatchedByID = userID
	tx.MatchNotes = notes

	if invoice.PaymentStatus != models.PaymentPaid {
		invoice.MarkAsPaid(tx.BookingDate, false)
		if err := s.invoices.Save(invoice); err != nil {
			return nil, err
		}
	}
	// Drop any stale batch rows from a prior match.
	if err := s.matches.ReplaceInvoiceMatches(tx, nil); err != nil {
		return nil, err
	}

	s.audit(tx.ID, "manual_match", previous, &invoice.ID, userID, notes)
	if err := s.statements.RecomputeAggregates(tx.StatementID); err != nil {
		return nil, err
	}
	return tx, nil
}

// ManualBatchMatch attaches several invoices of one supplier to a single
// transaction via the join table. The invoice gross amounts must add up to
// the transaction amount within the tolerance, and all invoices must share a
// supplier; both are validated before anything is written.
func (s *Service) ManualBatchMatch(txID uuid.UUID, invoiceIDs []uuid.UUID, userID *uuid.UUID, notes string) (*models.BankTransaction, error) {
	if len(invoiceIDs) == 0 {
		return nil, &ValidationError{Reason: "no invoices given"}
	}
	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.GetByIDs(invoiceIDs)
	if err != nil {
		return nil, err
	}
	if len(invoices) != len(invoiceIDs) {
		return nil, &ValidationError{Reason: "one or more invoices not found"}
	}

	supplier := invoices[0].SupplierTaxNumber
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.SupplierTaxNumber != supplier {
			return nil, &ValidationError{Reason: "batch match requires a single supplier"}
		}
		total = total.Add(inv.InvoiceGrossAmount)
	}
	if !withinTolerance(total, tx.Amount.Abs()) {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"invoice total %s is outside the tolerance of transaction amount %s",
			total, tx.Amount.Abs())}
	}

	previous := tx.MatchedInvoiceID
	now := time.Now()

	// Clear any prior single match, then carry the match on the join rows.
	tx.ClearMatch()
	tx.Matched = true
	tx.MatchConfidence = ConfidenceExact
	tx.MatchMethod = models.MatchManualBatch
	tx.MatchedAt = &now
	tx.MatchedByID = userID
	tx.MatchNotes = notes

	rows := make([]models.BankTransactionInvoiceMatch, len(invoices))
	for i, inv := range invoices {
		rows[i] = models.BankTransactionInvoiceMatch{
			ID:              uuid.New(),
			TransactionID:   tx.ID,
			InvoiceID:       inv.ID,
			MatchConfidence: ConfidenceExact,
			MatchMethod:     models.MatchManualBatch,
			MatchNotes:      notes,
			MatchedByID:     userID,
			MatchedAt:       now,
		}
	}
	if err := s.matches.ReplaceInvoiceMatches(tx, rows); err != nil {
		return nil, err
	}

	for i := range invoices {
		if invoices[i].PaymentStatus != models.PaymentPaid {
			invoices[i].MarkAsPaid(tx.BookingDate, false)
			if err := s.invoices.Save(&invoices[i]); err != nil {
				return nil, err
			}
		}
	}

	s.audit(tx.ID, "manual_batch_match", previous, nil, userID, notes)
	if err := s.statements.RecomputeAggregates(tx.StatementID); err != nil {
		return nil, err
	}
	return tx, nil
}

// Unmatch clears every match field and join row. A reimbursement pair is
// dissolved on both sides.
func (s *Service) Unmatch(txID uuid.UUID, userID *uuid.UUID, reason string) (*models.BankTransaction, error) {
	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}

	previous := tx.MatchedInvoiceID
	if tx.MatchedReimbursementID != nil {
		if pair, err := s.transactions.GetByID(*tx.MatchedReimbursementID); err == nil {
			pair.ClearMatch()
			tx.ClearMatch()
			if err := s.transactions.SaveReimbursementPair(tx, pair); err != nil {
				return nil, err
			}
		}
	} else {
		tx.ClearMatch()
	}
	if err := s.matches.ReplaceInvoiceMatches(tx, nil); err != nil {
		return nil, err
	}

	s.audit(tx.ID, "unmatch", previous, nil, userID, reason)
	if err := s.statements.RecomputeAggregates(tx.StatementID); err != nil {
		return nil, err
	}
	return tx, nil
}

// ApproveMatch upgrades an existing match's confidence to 1.00 without
// changing what it points to, appending an audit note.
func (s *Service) ApproveMatch(txID uuid.UUID, userID *uuid.UUID, note string) (*models.BankTransaction, error) {
	tx, err := s.transactions.GetByID(txID)
	if err != nil {
		return nil, err
	}
	if !tx.Matched {
		return nil, &ValidationError{Reason: "transaction has no match to approve"}
	}

	tx.MatchConfidence = ConfidenceExact
	tx.MatchedByID = userID
	if note != "" {
		if tx.MatchNotes != "" {
			tx.MatchNotes += "; "
		}
		tx.MatchNotes += note
	}
	if err := s.transactions.Save(tx); err != nil {
		return nil, err
	}

	s.audit(tx.ID, "approve_match", tx.MatchedInvoiceID, tx.MatchedInvoiceID, userID, note)
	return tx, nil
}

// Rematch clears the current match and re-runs the cascade from scratch.
func (s *Service) Rematch(txID uuid.UUID, userID *uuid.UUID) (*models.BankTransaction, error) {
	tx, err := s.Unmatch(txID, userID, "rematch")
	if err != nil {
		return nil, err
	}
	if _, err := s.MatchTransaction(tx); err != nil {
		return nil, err
	}
	if err := s.statements.RecomputeAggregates(tx.StatementID); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Service) audit(txID uuid.UUID, action string, previous, next *uuid.UUID, userID *uuid.UUID, reason string) {
	entry := &models.MatchAuditLog{
		ID:              uuid.New(),
		TransactionID:   txID,
		Action:          action,
		PreviousInvoice: previous,
		NewInvoice:      next,
		PerformedByID:   userID,
		Reason:          reason,
		CreatedAt:       time.Now(),
	}
	if err := s.matches.CreateAuditLog(entry); err != nil {
		s.log.Error().Err(err).Str("transaction_id", txID.String()).Msg("audit log write failed")
	}
}

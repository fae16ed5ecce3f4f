// Package matching links bank transactions to internal transfers, invoices
// and reimbursement counterparts, in that priority order.
package matching

import (
	"strings"
	"time"

	"github.com/google/uuid"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/bank"
	"bank-reconciliation-backend/internal/models"
)

// Matching windows and thresholds. Empirically tuned values; behavior parity
// matters more than the exact numbers, so change them only deliberately.
const (
	TransferWindowDays      = 14
	ReimbursementWindowDays = 5
	InvoiceDueLookbackDays  = 10
	InvoiceDueWindowDays    = 30

	NameSimilarityThreshold     = 70
	TransferSimilarityThreshold = 80
)

var (
	ConfidenceExact         = decimal.NewFromInt(1)
	ConfidenceAmountIBAN    = decimal.RequireFromString("0.95")
	ConfidenceFuzzyBase     = decimal.RequireFromString("0.70")
	ConfidenceFuzzySpan     = decimal.RequireFromString("0.20")
	ConfidenceAmountDate    = decimal.RequireFromString("0.60")
	ConfidenceReimbursement = decimal.RequireFromString("0.70")

	// AutoPaidThreshold is the confidence at or above which a winning match
	// marks an unpaid invoice as paid.
	AutoPaidThreshold = decimal.RequireFromString("0.90")

	// AmountTolerance is the relative tolerance (±1%) for fuzzy and batch
	// amount comparisons.
	AmountTolerance = decimal.RequireFromString("0.01")
)

type TransactionStore interface {
	GetByID(id uuid.UUID) (*models.BankTransaction, error)
	Save(tx *models.BankTransaction) error
	UnmatchedByStatement(statementID uuid.UUID) ([]models.BankTransaction, error)
	ReimbursementCandidates(companyID uuid.UUID, around time.Time, windowDays int, excludeID uuid.UUID) ([]models.BankTransaction, error)
	SaveReimbursementPair(a, b *models.BankTransaction) error
}

type InvoiceStore interface {
	Candidates(companyID uuid.UUID, from, to time.Time) ([]models.Invoice, error)
	GetByID(id uuid.UUID) (*models.Invoice, error)
	GetByIDs(ids []uuid.UUID) ([]models.Invoice, error)
	Save(invoice *models.Invoice) error
}

type TransferStore interface {
	UsedInBankCandidates(companyID uuid.UUID, amount decimal.Decimal, from, to time.Time) ([]models.Transfer, error)
}

type MatchStore interface {
	ReplaceInvoiceMatches(tx *models.BankTransaction, rows []models.BankTransactionInvoiceMatch) error
	InvoiceMatchesByTransaction(txID uuid.UUID) ([]models.BankTransactionInvoiceMatch, error)
	CreateAuditLog(entry *models.MatchAuditLog) error
}

type StatementStore interface {
	RecomputeAggregates(id uuid.UUID) error
}

type Service struct {
	transactions TransactionStore
	invoices     InvoiceStore
	transfers    TransferStore
	matches      MatchStore
	statements   StatementStore
	log          zerolog.Logger
}

func NewService(
	transactions TransactionStore,
	invoices InvoiceStore,
	transfers TransferStore,
	matches MatchStore,
	statements StatementStore,
	log zerolog.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		invoices:     invoices,
		transfers:    transfers,
		matches:      matches,
		statements:   statements,
		log:          log.With().Str("component", "matching").Logger(),
	}
}

// MatchStatement runs the cascade over every unmatched transaction of a
// statement. A failure on one transaction is logged and never aborts the
// sweep. Returns how many transactions got matched.
func (s *Service) MatchStatement(statementID uuid.UUID) (int, error) {
	txs, err := s.transactions.UnmatchedByStatement(statementID)
	if err != nil {
		return 0, err
	}

	matched := 0
	for i := range txs {
		ok, err := s.MatchTransaction(&txs[i])
		if err != nil {
			s.log.Error().Err(err).
				Str("transaction_id", txs[i].ID.String()).
				Msg("matching failed, transaction left unmatched")
			continue
		}
		if ok {
			matched++
		}
	}

	if err := s.statements.RecomputeAggregates(statementID); err != nil {
		return matched, err
	}
	return matched, nil
}

// MatchTransaction runs the priority cascade for one transaction:
// transfers, then the invoice sub-strategies, then reimbursement pairing.
// First match wins. No match at all is a normal outcome, not an error.
func (s *Service) MatchTransaction(tx *models.BankTransaction) (bool, error) {
	if matched, err := s.matchTransfer(tx); matched || err != nil {
		return matched, err
	}
	if matched, err := s.matchInvoice(tx); matched || err != nil {
		return matched, err
	}
	return s.matchReimbursement(tx)
}

// matchTransfer links debit transactions to outgoing transfers from batches
// already handed to the bank. Amount must match exactly and the execution
// date must be within the window; identity is established by account number
// or name similarity.
func (s *Service) matchTransfer(tx *models.BankTransaction) (bool, error) {
	if !tx.Amount.IsNegative() {
		return false, nil
	}

	from := tx.BookingDate.AddDate(0, 0, -TransferWindowDays)
	to := tx.BookingDate.AddDate(0, 0, TransferWindowDays)
	candidates, err := s.transfers.UsedInBankCandidates(tx.CompanyID, tx.Amount.Abs(), from, to)
	if err != nil {
		return false, err
	}

	for i := range candidates {
		if !s.transferIdentityMatches(tx, &candidates[i]) {
			continue
		}
		now := time.Now()
		tx.Matched = true
		tx.MatchedTransferID = &candidates[i].ID
		tx.MatchConfidence = ConfidenceExact
		tx.MatchMethod = models.MatchTransferExact
		tx.MatchedAt = &now
		if err := s.transactions.Save(tx); err != nil {
			return false, err
		}
		s.log.Info().
			Str("transaction_id", tx.ID.String()).
			Str("transfer_id", candidates[i].ID.String()).
			Msg("matched internal transfer")
		return true, nil
	}
	return false, nil
}

func (s *Service) transferIdentityMatches(tx *models.BankTransaction, transfer *models.Transfer) bool {
	transferAcct := bank.CleanAccountNumber(transfer.BeneficiaryAccountNumber)
	if transferAcct != "" {
		if bank.CleanAccountNumber(tx.BeneficiaryAccount) == transferAcct ||
			bank.CleanAccountNumber(tx.BeneficiaryIBAN) == transferAcct {
			return true
		}
	}
	if nameSimilarity(tx.BeneficiaryName, transfer.BeneficiaryName) >= TransferSimilarityThreshold {
		return true
	}
	// POS-style transactions paid via an internal transfer carry the
	// counterparty in the merchant field.
	return nameSimilarity(tx.MerchantName, transfer.BeneficiaryName) >= TransferSimilarityThreshold
}

// invoiceCandidate pairs a pool invoice with the confidence a sub-strategy
// assigned to it.
type invoiceCandidate struct {
	invoice    *models.Invoice
	confidence decimal.Decimal
	method     models.MatchMethod
}

// matchInvoice tries the invoice sub-strategies strictly in order; the first
// strategy that produces any hit wins, even if a later strategy would score
// a different invoice.
func (s *Service) matchInvoice(tx *models.BankTransaction) (bool, error) {
	pool, err := s.invoiceCandidates(tx)
	if err != nil {
		return false, err
	}
	if len(pool) == 0 {
		return false, nil
	}

	strategies := []func(*models.BankTransaction, []models.Invoice) *invoiceCandidate{
		s.byReferenceExact,
		s.byAmountAndIBAN,
		s.byFuzzyName,
		s.byAmountAndDate,
	}
	for _, strategy := range strategies {
		hit := strategy(tx, pool)
		if hit == nil {
			continue
		}
		if err := s.commitInvoiceMatch(tx, hit); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// invoiceCandidates computes the candidate pool once per transaction:
// company scope, non-STORNO, effective due date within the band around the
// value date, and direction compatibility.
func (s *Service) invoiceCandidates(tx *models.BankTransaction) ([]models.Invoice, error) {
	adjusted := tx.ValueDate.AddDate(0, 0, -InvoiceDueLookbackDays)
	until := adjusted.AddDate(0, 0, InvoiceDueWindowDays)

	pool, err := s.invoices.Candidates(tx.CompanyID, adjusted, until)
	if err != nil {
		return nil, err
	}

	compatible := pool[:0]
	for _, inv := range pool {
		if isDirectionCompatible(tx, &inv) {
			compatible = append(compatible, inv)
		}
	}
	return compatible, nil
}

// isDirectionCompatible rejects sign/direction mismatches regardless of any
// other signal strength: an OUTBOUND invoice is settled by incoming money,
// an INBOUND invoice by outgoing money.
func isDirectionCompatible(tx *models.BankTransaction, inv *models.Invoice) bool {
	switch inv.InvoiceDirection {
	case models.InvoiceOutbound:
		return tx.Amount.IsPositive()
	case models.InvoiceInbound:
		return tx.Amount.IsNegative()
	}
	return false
}

// byReferenceExact matches when the free-text reference carries the
// invoice's NAV number, or the digits of the reference contain the
// supplier's tax number.
func (s *Service) byReferenceExact(tx *models.BankTransaction, pool []models.Invoice) *invoiceCandidate {
	if tx.Reference == "" {
		return nil
	}
	ref := strings.ToLower(tx.Reference)
	refDigits := bank.DigitsOnly(tx.Reference)

	for i := range pool {
		inv := &pool[i]
		if inv.NavInvoiceNumber != "" &&
			strings.Contains(ref, strings.ToLower(inv.NavInvoiceNumber)) {
			return &invoiceCandidate{invoice: inv, confidence: ConfidenceExact, method: models.MatchReferenceExact}
		}
		taxDigits := bank.DigitsOnly(inv.SupplierTaxNumber)
		if len(taxDigits) >= 8 && strings.Contains(refDigits, taxDigits) {
			return &invoiceCandidate{invoice: inv, confidence: ConfidenceExact, method: models.MatchReferenceExact}
		}
	}
	return nil
}

// byAmountAndIBAN matches on exact gross amount plus the counterparty
// account number.
func (s *Service) byAmountAndIBAN(tx *models.BankTransaction, pool []models.Invoice) *invoiceCandidate {
	txIBAN := bank.CleanAccountNumber(tx.BeneficiaryIBAN)
	txAcct := bank.CleanAccountNumber(tx.BeneficiaryAccount)
	if txIBAN == "" && txAcct == "" {
		return nil
	}

	for i := range pool {
		inv := &pool[i]
		if !tx.Amount.Abs().Equal(inv.InvoiceGrossAmount) {
			continue
		}
		invAcct := bank.CleanAccountNumber(inv.SupplierBankAccountNumber)
		if invAcct == "" {
			continue
		}
		if invAcct == txIBAN || invAcct == txAcct {
			return &invoiceCandidate{invoice: inv, confidence: ConfidenceAmountIBAN, method: models.MatchAmountIBAN}
		}
	}
	return nil
}

// byFuzzyName matches on amount tolerance plus supplier-name similarity.
// Confidence scales with the similarity: 0.70 + sim/100 × 0.20. The pool is
// ID-ordered and only a strictly higher confidence replaces the best, so the
// lowest invoice ID wins ties.
func (s *Service) byFuzzyName(tx *models.BankTransaction, pool []models.Invoice) *invoiceCandidate {
	counterparty := tx.BeneficiaryName
	if counterparty == "" {
		counterparty = tx.PayerName
	}
	if counterparty == "" {
		return nil
	}

	var best *invoiceCandidate
	for i := range pool {
		inv := &pool[i]
		if !withinTolerance(tx.Amount.Abs(), inv.InvoiceGrossAmount) {
			continue
		}
		sim := nameSimilarity(counterparty, inv.SupplierName)
		if sim < NameSimilarityThreshold {
			continue
		}
		confidence := ConfidenceFuzzyBase.Add(
			ConfidenceFuzzySpan.Mul(decimal.NewFromInt(int64(sim))).Div(decimal.NewFromInt(100)),
		).Round(2)
		if best == nil || confidence.GreaterThan(best.confidence) {
			best = &invoiceCandidate{invoice: inv, confidence: confidence, method: models.MatchFuzzyName}
		}
	}
	return best
}

// byAmountAndDate is the fallback when no reference, account or name signal
// exists: amount within tolerance against an invoice that already passed the
// date/direction filter. First qualifying invoice wins.
func (s *Service) byAmountAndDate(tx *models.BankTransaction, pool []models.Invoice) *invoiceCandidate {
	for i := range pool {
		inv := &pool[i]
		if withinTolerance(tx.Amount.Abs(), inv.InvoiceGrossAmount) {
			return &invoiceCandidate{invoice: inv, confidence: ConfidenceAmountDate, method: models.MatchAmountDateOnly}
		}
	}
	return nil
}

// commitInvoiceMatch writes the match and, above the threshold, marks an
// unpaid invoice as paid. An already PAID invoice is never mutated: the
// match then only serves as verification.
func (s *Service) commitInvoiceMatch(tx *models.BankTransaction, hit *invoiceCandidate) error {
	now := time.Now()
	tx.Matched = true
	tx.MatchedInvoiceID = &hit.invoice.ID
	tx.MatchConfidence = hit.confidence
	tx.MatchMethod = hit.method
	tx.MatchedAt = &now

	if hit.confidence.GreaterThanOrEqual(AutoPaidThreshold) &&
		hit.invoice.PaymentStatus != models.PaymentPaid {
		hit.invoice.MarkAsPaid(tx.BookingDate, true)
		if err := s.invoices.Save(hit.invoice); err != nil {
			return err
		}
	}

	if err := s.transactions.Save(tx); err != nil {
		return err
	}
	s.log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("invoice_id", hit.invoice.ID.String()).
		Str("method", string(hit.method)).
		Str("confidence", hit.confidence.String()).
		Msg("matched invoice")
	return nil
}

// matchReimbursement pairs a transaction with an opposite-signed twin of
// equal magnitude booked within the window. The pairing is symmetric and
// flagged for manual review.
func (s *Service) matchReimbursement(tx *models.BankTransaction) (bool, error) {
	candidates, err := s.transactions.ReimbursementCandidates(
		tx.CompanyID, tx.BookingDate, ReimbursementWindowDays, tx.ID)
	if err != nil {
		return false, err
	}

	for i := range candidates {
		other := &candidates[i]
		if other.Matched || other.MatchedReimbursementID != nil {
			continue
		}
		if !tx.Amount.Abs().Equal(other.Amount.Abs()) {
			continue
		}
		if tx.Amount.IsNegative() == other.Amount.IsNegative() {
			continue
		}

		now := time.Now()
		for _, side := range []*models.BankTransaction{tx, other} {
			side.Matched = true
			side.MatchConfidence = ConfidenceReimbursement
			side.MatchMethod = models.MatchReimbursementPair
			side.MatchedAt = &now
			side.MatchNotes = "reimbursement pair, requires manual review"
		}
		tx.MatchedReimbursementID = &other.ID
		other.MatchedReimbursementID = &tx.ID

		if err := s.transactions.SaveReimbursementPair(tx, other); err != nil {
			return false, err
		}
		s.log.Info().
			Str("transaction_id", tx.ID.String()).
			Str("pair_id", other.ID.String()).
			Msg("paired reimbursement")
		return true, nil
	}
	return false, nil
}

func withinTolerance(amount, target decimal.Decimal) bool {
	if target.IsZero() {
		return amount.IsZero()
	}
	return amount.Sub(target).Abs().LessThanOrEqual(target.Abs().Mul(AmountTolerance))
}

func nameSimilarity(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return fuzzy.TokenSortRatio(a, b)
}

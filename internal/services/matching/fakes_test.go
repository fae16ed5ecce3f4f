package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/models"
)

// In-memory stores backing the service in tests. Slices stand in for
// ID-ordered query results: insertion order is the deterministic order the
// real queries produce.

type fakeTxStore struct {
	txs []*models.BankTransaction
}

func (s *fakeTxStore) add(tx *models.BankTransaction) *models.BankTransaction {
	s.txs = append(s.txs, tx)
	return tx
}

func (s *fakeTxStore) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, fmt.Errorf("transaction %s not found", id)
}

func (s *fakeTxStore) Save(tx *models.BankTransaction) error {
	for i, existing := range s.txs {
		if existing.ID == tx.ID {
			s.txs[i] = tx
			return nil
		}
	}
	s.txs = append(s.txs, tx)
	return nil
}

func (s *fakeTxStore) UnmatchedByStatement(statementID uuid.UUID) ([]models.BankTransaction, error) {
	var out []models.BankTransaction
	for _, tx := range s.txs {
		if tx.StatementID == statementID && !tx.Matched {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (s *fakeTxStore) ReimbursementCandidates(companyID uuid.UUID, around time.Time, windowDays int, excludeID uuid.UUID) ([]models.BankTransaction, error) {
	from := around.AddDate(0, 0, -windowDays)
	to := around.AddDate(0, 0, windowDays)
	var out []models.BankTransaction
	for _, tx := range s.txs {
		if tx.CompanyID != companyID || tx.ID == excludeID || tx.Matched {
			continue
		}
		if tx.BookingDate.Before(from) || tx.BookingDate.After(to) {
			continue
		}
		out = append(out, *tx)
	}
	return out, nil
}

func (s *fakeTxStore) SaveReimbursementPair(a, b *models.BankTransaction) error {
	if err := s.Save(a); err != nil {
		return err
	}
	return s.Save(b)
}

type fakeInvoiceStore struct {
	invoices []*models.Invoice
}

func (s *fakeInvoiceStore) add(inv *models.Invoice) *models.Invoice {
	s.invoices = append(s.invoices, inv)
	return inv
}

func (s *fakeInvoiceStore) Candidates(companyID uuid.UUID, from, to time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.CompanyID != companyID || inv.InvoiceOperation == models.OperationStorno {
			continue
		}
		due := inv.EffectiveDueDate()
		if due == nil || due.Before(from) || due.After(to) {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (s *fakeInvoiceStore) GetByID(id uuid.UUID) (*models.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("invoice %s not found", id)
}

func (s *fakeInvoiceStore) GetByIDs(ids []uuid.UUID) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, id := range ids {
		for _, inv := range s.invoices {
			if inv.ID == id {
				out = append(out, *inv)
			}
		}
	}
	return out, nil
}

func (s *fakeInvoiceStore) Save(invoice *models.Invoice) error {
	for i, existing := range s.invoices {
		if existing.ID == invoice.ID {
			s.invoices[i] = invoice
			return nil
		}
	}
	s.invoices = append(s.invoices, invoice)
	return nil
}

type fakeTransferStore struct {
	transfers []models.Transfer
}

func (s *fakeTransferStore) UsedInBankCandidates(companyID uuid.UUID, amount decimal.Decimal, from, to time.Time) ([]models.Transfer, error) {
	var out []models.Transfer
	for _, tr := range s.transfers {
		if !tr.Amount.Equal(amount) {
			continue
		}
		if tr.ExecutionDate.Before(from) || tr.ExecutionDate.After(to) {
			continue
		}
		out = append(out, tr)
	}
	return out, nil
}

type fakeMatchStore struct {
	txs   *fakeTxStore
	rows  map[uuid.UUID][]models.BankTransactionInvoiceMatch
	audit []models.MatchAuditLog
}

func newFakeMatchStore(txs *fakeTxStore) *fakeMatchStore {
	return &fakeMatchStore{txs: txs, rows: map[uuid.UUID][]models.BankTransactionInvoiceMatch{}}
}

func (s *fakeMatchStore) ReplaceInvoiceMatches(tx *models.BankTransaction, rows []models.BankTransactionInvoiceMatch) error {
	if len(rows) == 0 {
		delete(s.rows, tx.ID)
	} else {
		s.rows[tx.ID] = rows
	}
	return s.txs.Save(tx)
}

func (s *fakeMatchStore) InvoiceMatchesByTransaction(txID uuid.UUID) ([]models.BankTransactionInvoiceMatch, error) {
	return s.rows[txID], nil
}

func (s *fakeMatchStore) CreateAuditLog(entry *models.MatchAuditLog) error {
	s.audit = append(s.audit, *entry)
	return nil
}

type fakeStatementStore struct {
	recomputed int
}

func (s *fakeStatementStore) RecomputeAggregates(id uuid.UUID) error {
	s.recomputed++
	return nil
}

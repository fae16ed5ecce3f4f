// Package ingestion drives a statement file from upload to parsed rows:
// dedup, bank detection, parsing, persistence and the matching sweep.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"bank-reconciliation-backend/internal/bank"
	"bank-reconciliation-backend/internal/models"
)

// DefaultParseTimeout bounds how long a single file may spend inside an
// adapter. Malformed PDFs have sent the extractor into pathological text
// reassembly before; the statement goes to ERROR instead of hanging the
// upload.
const DefaultParseTimeout = 60 * time.Second

type StatementStore interface {
	Create(s *models.BankStatement) error
	Update(s *models.BankStatement) error
	UpdateStatus(id uuid.UUID, status models.StatementStatus, errorMessage string) error
	FindByHash(companyID uuid.UUID, hash string) (*models.BankStatement, error)
	FindByPeriod(companyID uuid.UUID, bankCode, accountNumber string, from, to time.Time, excludeID uuid.UUID) (*models.BankStatement, error)
	RecomputeAggregates(id uuid.UUID) error
}

type TransactionStore interface {
	CreateBatch(txs []*models.BankTransaction) error
}

type CostStore interface {
	CreateOtherCost(cost *models.OtherCost) error
}

// Matcher runs the matching sweep after a statement is persisted.
type Matcher interface {
	MatchStatement(statementID uuid.UUID) (int, error)
}

type Service struct {
	registry     *bank.Registry
	statements   StatementStore
	transactions TransactionStore
	costs        CostStore
	matcher      Matcher
	parseTimeout time.Duration
	log          zerolog.Logger
}

func NewService(
	registry *bank.Registry,
	statements StatementStore,
	transactions TransactionStore,
	costs CostStore,
	matcher Matcher,
	log zerolog.Logger,
) *Service {
	return &Service{
		registry:     registry,
		statements:   statements,
		transactions: transactions,
		costs:        costs,
		matcher:      matcher,
		parseTimeout: DefaultParseTimeout,
		log:          log.With().Str("component", "ingestion").Logger(),
	}
}

// IngestStatement runs the full pipeline for one uploaded file. On parse
// failure the statement row survives in ERROR state with the reason, so the
// upload is diagnosable; only pre-parse rejections (duplicates, unknown
// format) leave nothing behind or return before creating the row.
func (s *Service) IngestStatement(companyID uuid.UUID, uploadedBy *uuid.UUID, filename string, data []byte) (*models.BankStatement, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if existing, err := s.statements.FindByHash(companyID, hash); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, &DuplicateError{Kind: "file", ExistingID: existing.ID}
	}

	adapter, err := s.registry.GetAdapter(data, filename)
	if err != nil {
		return nil, err
	}

	stmt := &models.BankStatement{
		ID:           uuid.New(),
		CompanyID:    companyID,
		UploadedByID: uploadedBy,
		Filename:     filename,
		FileHash:     hash,
		BankCode:     adapter.Code(),
		BankName:     adapter.Name(),
		BankBIC:      adapter.BIC(),
		Status:       models.StatementUploaded,
	}
	if err := s.statements.Create(stmt); err != nil {
		return nil, err
	}

	if err := s.statements.UpdateStatus(stmt.ID, models.StatementParsing, ""); err != nil {
		return stmt, err
	}
	stmt.Status = models.StatementParsing

	result, err := s.parseWithTimeout(adapter, data)
	if err != nil {
		return s.fail(stmt, err)
	}
	if err := result.Metadata.Validate(); err != nil {
		return s.fail(stmt, &bank.StatementParseError{Bank: adapter.Code(), Reason: err.Error()})
	}

	meta := result.Metadata
	dup, err := s.statements.FindByPeriod(companyID, adapter.Code(), meta.AccountNumber, meta.PeriodFrom, meta.PeriodTo, stmt.ID)
	if err != nil {
		return stmt, err
	}
	if dup != nil {
		return s.fail(stmt, &DuplicateError{Kind: "period", ExistingID: dup.ID})
	}

	s.applyMetadata(stmt, meta)

	rows := make([]*models.BankTransaction, 0, len(result.Transactions))
	var systemRows []*models.BankTransaction
	for i := range result.Transactions {
		row := s.toModel(stmt, &result.Transactions[i])
		rows = append(rows, row)
		if result.Transactions[i].IsSystemType() {
			systemRows = append(systemRows, row)
		}
	}
	if err := s.transactions.CreateBatch(rows); err != nil {
		return s.fail(stmt, fmt.Errorf("persisting transactions: %w", err))
	}
	s.categorizeSystemRows(systemRows)

	for _, skipped := range result.Skipped {
		s.log.Warn().
			Str("statement_id", stmt.ID.String()).
			Str("bank_code", adapter.Code()).
			Int("block", skipped.Block).
			Str("reason", skipped.Reason).
			Msg("skipped unparseable block")
	}

	if err := s.statements.Update(stmt); err != nil {
		return stmt, err
	}
	if err := s.statements.RecomputeAggregates(stmt.ID); err != nil {
		return stmt, err
	}
	if err := s.statements.UpdateStatus(stmt.ID, models.StatementParsed, ""); err != nil {
		return stmt, err
	}
	stmt.Status = models.StatementParsed

	s.log.Info().
		Str("statement_id", stmt.ID.String()).
		Str("bank_code", adapter.Code()).
		Int("transactions", len(rows)).
		Int("skipped", len(result.Skipped)).
		Msg("statement parsed")

	// Matching is best-effort here; the statement is already PARSED and the
	// sweep can be re-run from the API.
	if s.matcher != nil {
		if n, err := s.matcher.MatchStatement(stmt.ID); err != nil {
			s.log.Error().Err(err).
				Str("statement_id", stmt.ID.String()).
				Msg("matching sweep failed after ingestion")
		} else {
			s.log.Info().
				Str("statement_id", stmt.ID.String()).
				Int("matched", n).
				Msg("matching sweep complete")
		}
	}
	return stmt, nil
}

func (s *Service) fail(stmt *models.BankStatement, cause error) (*models.BankStatement, error) {
	if err := s.statements.UpdateStatus(stmt.ID, models.StatementError, cause.Error()); err != nil {
		s.log.Error().Err(err).
			Str("statement_id", stmt.ID.String()).
			Msg("recording statement error state failed")
	}
	stmt.Status = models.StatementError
	stmt.ErrorMessage = cause.Error()
	return stmt, cause
}

func (s *Service) parseWithTimeout(adapter bank.Adapter, data []byte) (*bank.ParseResult, error) {
	type outcome struct {
		result *bank.ParseResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: &bank.StatementParseError{
					Bank:   adapter.Code(),
					Reason: fmt.Sprintf("parser panic: %v", rec),
				}}
			}
		}()
		result, err := adapter.Parse(data)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-time.After(s.parseTimeout):
		return nil, &bank.StatementParseError{
			Bank:   adapter.Code(),
			Reason: fmt.Sprintf("parsing exceeded %s", s.parseTimeout),
		}
	}
}

func (s *Service) applyMetadata(stmt *models.BankStatement, meta *bank.StatementMetadata) {
	stmt.AccountNumber = meta.AccountNumber
	stmt.AccountIBAN = meta.AccountIBAN
	stmt.StatementNumber = meta.StatementNumber
	stmt.OpeningBalance = meta.OpeningBalance
	stmt.ClosingBalance = meta.ClosingBalance

	from, to := meta.PeriodFrom, meta.PeriodTo
	stmt.PeriodFrom = &from
	stmt.PeriodTo = &to

	if raw := bank.SanitizeRaw(meta.Raw); raw != nil {
		if encoded, err := json.Marshal(raw); err == nil {
			stmt.RawMetadata = datatypes.JSON(encoded)
		}
	}
}

func (s *Service) toModel(stmt *models.BankStatement, tx *bank.Transaction) *models.BankTransaction {
	row := &models.BankTransaction{
		ID:          uuid.New(),
		CompanyID:   stmt.CompanyID,
		StatementID: stmt.ID,

		TransactionType: string(tx.Type),
		BookingDate:     tx.BookingDate,
		ValueDate:       tx.ValueDate,
		Amount:          tx.Amount,
		Currency:        tx.Currency,

		Description:      tx.Description,
		ShortDescription: tx.ShortDescription,

		PayerName:          tx.PayerName,
		PayerIBAN:          tx.PayerIBAN,
		PayerAccountNumber: tx.PayerAccountNumber,
		PayerBIC:           tx.PayerBIC,
		BeneficiaryName:    tx.BeneficiaryName,
		BeneficiaryIBAN:    tx.BeneficiaryIBAN,
		BeneficiaryAccount: tx.BeneficiaryAccountNumber,
		BeneficiaryBIC:     tx.BeneficiaryBIC,

		Reference: tx.Reference,

		PartnerID:           tx.PartnerID,
		BankTransactionID:   tx.TransactionID,
		PaymentID:           tx.PaymentID,
		TransactionTypeCode: tx.TypeCode,

		FeeAmount: tx.FeeAmount,

		CardNumber:       tx.CardNumber,
		MerchantName:     tx.MerchantName,
		MerchantLocation: tx.MerchantLocation,

		OriginalAmount:   tx.OriginalAmount,
		OriginalCurrency: tx.OriginalCurrency,
		ExchangeRate:     tx.ExchangeRate,
	}

	if raw := bank.SanitizeRaw(tx.Raw); len(raw) > 0 {
		if encoded, err := json.Marshal(raw); err == nil {
			row.RawData = datatypes.JSON(encoded)
		}
	}

	// Fees and interest never enter invoice matching; they are born matched
	// so the sweep skips them.
	if tx.IsSystemType() {
		now := time.Now()
		row.Matched = true
		row.MatchMethod = models.MatchSystemAutoCategorized
		row.MatchConfidence = decimal.NewFromInt(1)
		row.MatchedAt = &now
	}
	return row
}

func (s *Service) categorizeSystemRows(rows []*models.BankTransaction) {
	for _, row := range rows {
		cost := &models.OtherCost{
			ID:            uuid.New(),
			CompanyID:     row.CompanyID,
			TransactionID: row.ID,
			CostType:      row.TransactionType,
			Amount:        row.Amount.Abs(),
			Description:   row.Description,
		}
		if err := s.costs.CreateOtherCost(cost); err != nil {
			s.log.Error().Err(err).
				Str("transaction_id", row.ID.String()).
				Msg("auto-categorization cost record failed")
		}
	}
}

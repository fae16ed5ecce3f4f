package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/bank"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/ingestion"
)

// MaxUploadBytes caps statement uploads; real statements are well under this.
const MaxUploadBytes = 10 << 20

var allowedExtensions = map[string]bool{
	".pdf": true,
	".csv": true,
	".xml": true,
}

type StatementHandler struct {
	ingestor   *ingestion.Service
	statements *repository.StatementRepository
	txs        *repository.TransactionRepository
	registry   *bank.Registry
}

func NewStatementHandler(
	ingestor *ingestion.Service,
	statements *repository.StatementRepository,
	txs *repository.TransactionRepository,
	registry *bank.Registry,
) *StatementHandler {
	return &StatementHandler{ingestor: ingestor, statements: statements, txs: txs, registry: registry}
}

// Upload receives a statement file, runs the ingestion pipeline and returns
// the resulting statement. Duplicates answer 409 with the existing statement,
// unparseable files 422 with the statement left in ERROR state.
func (h *StatementHandler) Upload(c *gin.Context) {
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

	if header.Size > MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 10MB limit"})
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type, expected .pdf, .csv or .xml"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	if len(data) > MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 10MB limit"})
		return
	}

	uploadedBy := optionalUserID(c)

	stmt, err := h.ingestor.IngestStatement(companyID, uploadedBy, header.Filename, data)
	if err != nil {
		var dup *ingestion.DuplicateError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{
				"error":                 err.Error(),
				"existing_statement_id": dup.ExistingID.String(),
			})
			return
		}
		var parseErr *bank.StatementParseError
		if errors.As(err, &parseErr) {
			status := http.StatusUnprocessableEntity
			body := gin.H{"error": err.Error()}
			if stmt != nil {
				body["statement"] = stmt
			}
			c.JSON(status, body)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"statement": stmt})
}

func (h *StatementHandler) List(c *gin.Context) {
	companyID, ok := requireCompanyID(c)
	if !ok {
		return
	}
	statements, err := h.statements.List(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statements": statements})
}

func (h *StatementHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}
	stmt, err := h.statements.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "statement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statement": stmt})
}

// ListTransactions pages through a statement's transactions with an optional
// matched filter.
func (h *StatementHandler) ListTransactions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}

	var matched *bool
	switch c.Query("matched") {
	case "true":
		v := true
		matched = &v
	case "false":
		v := false
		matched = &v
	}

	items, nextCursor, hasMore, err := h.txs.ListByStatement(id, matched, c.Query("cursor"), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

// Stats summarizes a statement's match state, broken down by method.
func (h *StatementHandler) Stats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}
	stmt, err := h.statements.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "statement not found"})
		return
	}

	byMethod := map[models.MatchMethod]int{}
	for i := range stmt.Transactions {
		if stmt.Transactions[i].Matched {
			byMethod[stmt.Transactions[i].MatchMethod]++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"total_transactions": stmt.TotalTransactions,
		"matched_count":      stmt.MatchedCount,
		"unmatched_count":    stmt.TotalTransactions - stmt.MatchedCount,
		"credit_count":       stmt.CreditCount,
		"debit_count":        stmt.DebitCount,
		"total_credits":      stmt.TotalCredits,
		"total_debits":       stmt.TotalDebits,
		"by_method":          byMethod,
	})
}

// Banks lists the supported statement formats.
func (h *StatementHandler) Banks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"banks": h.registry.ListSupportedBanks()})
}

func requireCompanyID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("company_id")
	if raw == "" {
		raw = c.PostForm("company_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid company_id required"})
		return uuid.Nil, false
	}
	return id, true
}

func optionalUserID(c *gin.Context) *uuid.UUID {
	raw := c.Query("user_id")
	if raw == "" {
		raw = c.PostForm("user_id")
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/services/matching"
)

type TransactionHandler struct {
	matcher *matching.Service
}

func NewTransactionHandler(matcher *matching.Service) *TransactionHandler {
	return &TransactionHandler{matcher: matcher}
}

// MatchStatement re-runs the automatic matching sweep over a statement's
// unmatched transactions.
func (h *TransactionHandler) MatchStatement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement ID"})
		return
	}
	matched, err := h.matcher.MatchStatement(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

func (h *TransactionHandler) ManualMatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		InvoiceID string `json:"invoice_id"`
		Notes     string `json:"notes"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	invoiceID, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	tx, err := h.matcher.ManualMatch(id, invoiceID, optionalUserID(c), payload.Notes)
	if err != nil {
		respondMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction matched", "transaction": tx})
}

func (h *TransactionHandler) BatchMatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		InvoiceIDs []string `json:"invoice_ids"`
		Notes      string   `json:"notes"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	invoiceIDs := make([]uuid.UUID, 0, len(payload.InvoiceIDs))
	for _, raw := range payload.InvoiceIDs {
		invoiceID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID: " + raw})
			return
		}
		invoiceIDs = append(invoiceIDs, invoiceID)
	}

	tx, err := h.matcher.ManualBatchMatch(id, invoiceIDs, optionalUserID(c), payload.Notes)
	if err != nil {
		respondMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction batch matched", "transaction": tx})
}

func (h *TransactionHandler) Unmatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.BindJSON(&payload)

	tx, err := h.matcher.Unmatch(id, optionalUserID(c), payload.Reason)
	if err != nil {
		respondMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction unmatched", "transaction": tx})
}

func (h *TransactionHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	var payload struct {
		Note string `json:"note"`
	}
	_ = c.BindJSON(&payload)

	tx, err := h.matcher.ApproveMatch(id, optionalUserID(c), payload.Note)
	if err != nil {
		respondMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match approved", "transaction": tx})
}

func (h *TransactionHandler) Rematch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}
	tx, err := h.matcher.Rematch(id, optionalUserID(c))
	if err != nil {
		respondMatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction rematched", "transaction": tx})
}

func respondMatchError(c *gin.Context, err error) {
	var validation *matching.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

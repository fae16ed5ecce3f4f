package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/bank"
	handler "bank-reconciliation-backend/internal/handlers"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/ingestion"
	"bank-reconciliation-backend/internal/services/matching"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, log zerolog.Logger) {
	statementRepo := repository.NewStatementRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	registry := bank.NewRegistry(log)

	matchService := matching.NewService(
		transactionRepo,
		invoiceRepo,
		transferRepo,
		matchRepo,
		statementRepo,
		log,
	)
	ingestService := ingestion.NewService(
		registry,
		statementRepo,
		transactionRepo,
		matchRepo,
		matchService,
		log,
	)

	statementHandler := handler.NewStatementHandler(ingestService, statementRepo, transactionRepo, registry)
	transactionHandler := handler.NewTransactionHandler(matchService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceRepo, log)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	api.GET("/banks", statementHandler.Banks)

	statements := api.Group("/statements")
	{
		statements.POST("/upload", statementHandler.Upload)
		statements.GET("", statementHandler.List)
		statements.GET("/:id", statementHandler.Get)
		statements.GET("/:id/transactions", statementHandler.ListTransactions)
		statements.GET("/:id/stats", statementHandler.Stats)
		statements.POST("/:id/match", transactionHandler.MatchStatement)
	}

	tx := api.Group("/transactions")
	{
		tx.POST("/:id/match", transactionHandler.ManualMatch)
		tx.POST("/:id/batch-match", transactionHandler.BatchMatch)
		tx.POST("/:id/unmatch", transactionHandler.Unmatch)
		tx.POST("/:id/approve", transactionHandler.Approve)
		tx.POST("/:id/rematch", transactionHandler.Rematch)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("/upload", invoiceHandler.Upload)
	}
}

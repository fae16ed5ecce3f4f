package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bank-reconciliation-backend/internal/config"
	"bank-reconciliation-backend/internal/logging"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/routes"
)

func main() {
	log := logging.New()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on system env")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.BankStatement{},
		&models.BankTransaction{},
		&models.Invoice{},
		&models.TransferBatch{},
		&models.Transfer{},
		&models.BankTransactionInvoiceMatch{},
		&models.OtherCost{},
		&models.MatchAuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, log)

	addr := config.ServerAddr()
	log.Info().Str("addr", addr).Msg("server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/notifications"
	"github.com/sjperalta/registro-api/internal/services"
	"github.com/sjperalta/registro-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup("development", "debug")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}
	cfg.EnableEmailNotifications = true

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Delivery fails unless the sender domain is verified.")
	}

	emailService := services.NewEmailService(cfg)
	reportService := services.NewReportService()
	ctx := context.Background()
	now := time.Now().UTC()

	successorID := uuid.New()
	successorExpiry := now.AddDate(1, 0, 0)
	results := []models.StatusChangeResult{
		{
			ContractID:     uuid.New(),
			ContractNumber: "CT-2025-001",
			Subject:        "Servizio di manutenzione ascensori",
			ReferentEmail:  toEmail,
			ExpiryDate:     now.AddDate(0, 0, -1),
			PreviousStatus: models.ContractStatusActive,
			NewStatus:      models.ContractStatusExpired,
			OperationCode:  notifications.CodeContractExpired,
			ChangedAt:      now,
		},
		{
			ContractID:      uuid.New(),
			ContractNumber:  "CT-2025-002",
			Subject:         "Fornitura cancelleria",
			ReferentEmail:   toEmail,
			ExpiryDate:      now.AddDate(0, 0, -3),
			PreviousStatus:  models.ContractStatusExpired,
			NewStatus:       models.ContractStatusRenewed,
			SuccessorID:     &successorID,
			SuccessorExpiry: &successorExpiry,
			OperationCode:   notifications.CodeContractRenewed,
			ChangedAt:       now,
		},
	}

	log.Printf("Sending status change email to %s...", toEmail)
	subject := notifications.ResolveDefaultSubject(notifications.CodeContractExpired)
	if err := emailService.SendStatusChange(ctx, toEmail, subject, results[0]); err != nil {
		log.Fatalf("Failed to send status change email: %v", err)
	}
	log.Println("Status change email sent successfully!")

	attachment, err := reportService.StatusChangeWorkbook("contracts.test", now, results)
	if err != nil {
		log.Fatalf("Failed to build workbook: %v", err)
	}

	log.Printf("Sending batch digest to %s...", toEmail)
	digest := services.BatchDigest{Job: "contracts.test", RunAt: now, Results: results, Attachment: attachment}
	if err := emailService.SendBatchDigest(ctx, []string{toEmail}, notifications.ResolveDefaultSubject(notifications.CodeBatchDigest), digest); err != nil {
		log.Fatalf("Failed to send batch digest: %v", err)
	}
	log.Println("Batch digest sent successfully!")
}

package services

import (
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/jobs"
	"github.com/sjperalta/registro-api/internal/metrics"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	Contract     *ContractService
	Lifecycle    *LifecycleService
	Notification *NotificationService
	Email        *EmailService
	Report       *ReportService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, archive *storage.LocalStorage, cfg *config.Config, m *metrics.Metrics) *Services {
	emailSvc := NewEmailService(cfg)
	var reportOpts []ReportOption
	if archive != nil {
		reportOpts = append(reportOpts, WithArchive(archive))
	}
	reportSvc := NewReportService(reportOpts...)
	notificationSvc := NewNotificationService(repos.Notification, repos.User, emailSvc, reportSvc, cfg.DispatchConcurrency, m)
	lifecycleSvc := NewLifecycleService(repos.Contract, cfg, WithLifecycleMetrics(m))

	return &Services{
		Auth:         NewAuthService(repos.User, cfg),
		Contract:     NewContractService(repos.Contract),
		Lifecycle:    lifecycleSvc,
		Notification: notificationSvc,
		Email:        emailSvc,
		Report:       reportSvc,
		Job:          NewJobService(worker, lifecycleSvc, notificationSvc, cfg),
	}
}

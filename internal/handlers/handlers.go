package handlers

import (
	"github.com/sjperalta/registro-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Contract     *ContractHandler
	Job          *JobHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Contract:     NewContractHandler(svcs.Contract),
		Job:          NewJobHandler(svcs.Job),
		Notification: NewNotificationHandler(svcs.Notification),
	}
}

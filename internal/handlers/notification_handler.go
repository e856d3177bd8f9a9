package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/registro-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// @Summary Notification Catalog
// @Description List the static catalog of notification operation codes
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/catalog [get]
func (h *NotificationHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"catalog": h.notificationService.Catalog()})
}

// @Summary Effective Subject
// @Description Resolve the email subject used for an operation code. Unknown codes fall back to the generic subject.
// @Tags Notifications
// @Produce json
// @Param code path string true "Operation code"
// @Success 200 {object} services.ResolvedSubject
// @Security BearerAuth
// @Router /notifications/catalog/{code}/subject [get]
func (h *NotificationHandler) Subject(c *gin.Context) {
	resolved, err := h.notificationService.ResolveSubject(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resolved)
}

// @Summary List Operations
// @Description List the persisted configuration of every operation code
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /notifications/operations [get]
func (h *NotificationHandler) Operations(c *gin.Context) {
	ops, err := h.notificationService.ListOperations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

// @Summary Update Operation
// @Description Enable or disable an operation code or change its subject override. An empty override restores the catalog subject.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param code path string true "Operation code"
// @Param operation body services.UpdateOperationRequest true "Operation changes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /notifications/operations/{code} [patch]
func (h *NotificationHandler) UpdateOperation(c *gin.Context) {
	var req services.UpdateOperationRequest
	if err := BindNestedOrFlat(c, "operation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Enabled == nil && req.SubjectOverride == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nessuna modifica richiesta"})
		return
	}

	op, err := h.notificationService.UpdateOperation(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Operazione non trovata"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"operation": op})
}

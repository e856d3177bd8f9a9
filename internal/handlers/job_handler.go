package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/registro-api/internal/middleware"
	"github.com/sjperalta/registro-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker statistics plus the registered lifecycle jobs with their schedule, next run and last outcome
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.JobStatus
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Run starts a registered job outside its schedule
// @Summary Run a job now
// @Description Runs the named lifecycle job immediately. Changes are attributed to the caller.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param name path string true "Job name" Enums(contracts.expiry-transition, contracts.auto-renewal)
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	err := h.jobService.RunNow(c.Request.Context(), name)
	switch {
	case errors.Is(err, services.ErrUnknownJob):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job non trovato"})
		return
	case errors.Is(err, services.ErrJobRunning):
		c.JSON(http.StatusConflict, gin.H{"error": "Job già in esecuzione"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Job avviato", "job": name, "requested_by": middleware.GetUsername(c)})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary List Contracts
// @Description Get a paginated list of registry contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search in number, subject and supplier"
// @Param status query string false "Filter by status" Enums(active, near_expiry, expired, renewed)
// @Param supplier query string false "Filter by supplier"
// @Param expiring_from query string false "Expiry date lower bound (YYYY-MM-DD)"
// @Param expiring_until query string false "Expiry date upper bound (YYYY-MM-DD)"
// @Param sort_by query string false "number, expiry_date, created_at, status or supplier"
// @Param sort_dir query string false "asc or desc"
// @Param include_deleted query bool false "Include logically deleted contracts"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	if query.Status != "" && !models.IsValidContractStatus(query.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stato non valido: " + query.Status})
		return
	}
	query.Supplier = c.Query("supplier")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	query.IncludeDeleted = c.Query("include_deleted") == "true"

	var err error
	if query.ExpiringFrom, err = parseDateQuery(c, "expiring_from"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data non valida: expiring_from"})
		return
	}
	if query.ExpiringUntil, err = parseDateQuery(c, "expiring_until"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data non valida: expiring_until"})
		return
	}
	if query.PerPage < 1 {
		query.PerPage = 20
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": contracts,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract
// @Description Get a contract by ID
// @Tags Contracts
// @Produce json
// @Param contract_id path string true "Contract ID (UUID)"
// @Param include_deleted query bool false "Return the contract even if logically deleted"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, err := uuid.Parse(c.Param("contract_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID contratto non valido"})
		return
	}
	contract, err := h.contractService.FindByID(c.Request.Context(), id, c.Query("include_deleted") == "true")
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contratto non trovato"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract})
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

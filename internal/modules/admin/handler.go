package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voiceagent/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/businesses", h.CreateBusiness)
	rg.GET("/businesses", h.ListBusinesses)
	rg.GET("/businesses/:id", h.GetBusiness)
	rg.PATCH("/businesses/:id", h.UpdateBusiness)
}

func (h *Handler) CreateBusiness(c *gin.Context) {
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body.")
		return
	}

	b, err := h.service.CreateBusiness(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Fail(c, http.StatusBadRequest, "INVALID_ARGS", err.Error())
		case errors.Is(err, ErrDuplicateExternalID):
			response.Fail(c, http.StatusConflict, "DUPLICATE_EXTERNAL_ID", err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, "SYSTEM_DOWN", "Failed to create business.")
		}
		return
	}
	response.OK(c, http.StatusCreated, toBusinessResponse(b))
}

func (h *Handler) ListBusinesses(c *gin.Context) {
	businesses, err := h.service.ListBusinesses(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "SYSTEM_DOWN", "Failed to list businesses.")
		return
	}

	out := make([]BusinessResponse, 0, len(businesses))
	for i := range businesses {
		out = append(out, toBusinessResponse(&businesses[i]))
	}
	response.OK(c, http.StatusOK, gin.H{"businesses": out, "count": len(out)})
}

func (h *Handler) GetBusiness(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBusiness(c.Request.Context(), id)
	if err != nil {
		failBusiness(c, err)
		return
	}
	response.OK(c, http.StatusOK, toBusinessResponse(b))
}

func (h *Handler) UpdateBusiness(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body.")
		return
	}

	b, err := h.service.UpdateBusiness(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Fail(c, http.StatusBadRequest, "INVALID_ARGS", err.Error())
		case errors.Is(err, ErrDuplicateExternalID):
			response.Fail(c, http.StatusConflict, "DUPLICATE_EXTERNAL_ID", err.Error())
		default:
			failBusiness(c, err)
		}
		return
	}
	response.OK(c, http.StatusOK, toBusinessResponse(b))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, "INVALID_ARGS", "Business id must be a positive integer.")
		return 0, false
	}
	return id, true
}

func failBusiness(c *gin.Context, err error) {
	if errors.Is(err, ErrBusinessNotFound) {
		response.Fail(c, http.StatusNotFound, "BUSINESS_NOT_FOUND", "Business not found.")
		return
	}
	response.Fail(c, http.StatusInternalServerError, "SYSTEM_DOWN", "Business lookup failed.")
}

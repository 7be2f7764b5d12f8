package availability

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voiceagent/internal/modules/tenant"
	"voiceagent/internal/pkg/response"
)

type Handler struct {
	service  *Service
	resolver *tenant.Resolver
}

func NewHandler(service *Service, resolver *tenant.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tools/check_availability", h.CheckAvailability)
}

// CheckAvailability always answers 200: the voice platform reads the envelope,
// not the status code.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req tenant.FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid function request wrapper.")
		return
	}

	args, err := ParseCheckArgs(req.Args)
	if err != nil {
		response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		return
	}

	business, err := h.resolver.Resolve(c.Request.Context(), req.Call)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrMissingContext):
			response.Fail(c, http.StatusOK, "MISSING_TENANT_CONTEXT", err.Error())
		case errors.Is(err, tenant.ErrResolutionFailed):
			response.Fail(c, http.StatusOK, "BUSINESS_NOT_FOUND", err.Error())
		default:
			response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue checking availability. Please transfer call.")
		}
		return
	}

	result, err := h.service.Check(c.Request.Context(), business, args)
	if err != nil {
		response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue checking availability. Please transfer call.")
		return
	}
	response.OK(c, http.StatusOK, result)
}

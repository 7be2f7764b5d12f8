package booking

import (
	"errors"
	"net/http"
	"time"

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
	rg.POST("/tools/create_booking", h.CreateBooking)
	rg.POST("/tools/find_booking", h.FindBooking)
	rg.POST("/tools/modify_booking", h.ModifyBooking)
	rg.POST("/tools/cancel_booking", h.CancelBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req tenant.FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid function request wrapper.")
		return
	}

	args, err := ParseCreateArgs(req.Args)
	if err != nil {
		response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		return
	}

	business, err := h.resolver.Resolve(c.Request.Context(), req.Call)
	if err != nil {
		failTenant(c, err, "creating booking")
		return
	}

	payload, err := h.service.Create(c.Request.Context(), business, req.Call.CallID, args)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		case errors.Is(err, ErrNoAvailability):
			response.Fail(c, http.StatusOK, "NO_AVAILABILITY", "That time just filled up. Please check availability again.")
		default:
			response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue creating booking. Please transfer call.")
		}
		return
	}
	// The stored envelope is returned verbatim so replays are byte-identical.
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *Handler) FindBooking(c *gin.Context) {
	var req tenant.FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid function request wrapper.")
		return
	}

	args, err := ParseFindArgs(req.Args)
	if err != nil {
		response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		return
	}

	business, err := h.resolver.Resolve(c.Request.Context(), req.Call)
	if err != nil {
		failTenant(c, err, "finding booking")
		return
	}

	matches, err := h.service.Find(c.Request.Context(), business, args, time.Now().UTC())
	if err != nil {
		response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue finding booking. Please transfer call.")
		return
	}

	switch len(matches) {
	case 0:
		response.Fail(c, http.StatusOK, "BOOKING_NOT_FOUND", "I couldn't find a reservation under that phone number.")
	case 1:
		response.OK(c, http.StatusOK, gin.H{"booking": matches[0]})
	default:
		if len(matches) > 3 {
			matches = matches[:3]
		}
		response.FailWithData(c, http.StatusOK, "AMBIGUOUS_BOOKING",
			"I found multiple reservations. Please share date or time to narrow it down.",
			gin.H{"matches": matches, "count": len(matches)})
	}
}

func (h *Handler) ModifyBooking(c *gin.Context) {
	var req tenant.FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid function request wrapper.")
		return
	}

	args, err := ParseModifyArgs(req.Args)
	if err != nil {
		response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		return
	}

	business, err := h.resolver.Resolve(c.Request.Context(), req.Call)
	if err != nil {
		failTenant(c, err, "modifying booking")
		return
	}

	result, err := h.service.Modify(c.Request.Context(), business, args)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Fail(c, http.StatusOK, "BOOKING_NOT_FOUND", "Booking not found for this business.")
		case errors.Is(err, ErrAlreadyCancelled):
			response.Fail(c, http.StatusOK, "BOOKING_ALREADY_CANCELLED", "Booking is already cancelled.")
		case errors.Is(err, ErrNoAvailability):
			response.Fail(c, http.StatusOK, "NO_AVAILABILITY", "No availability for requested updated start time.")
		default:
			response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue modifying booking. Please transfer call.")
		}
		return
	}

	b := result.Booking
	data := gin.H{
		"booking_id": b.ID,
		"start_time": b.StartTime.UTC().Format(time.RFC3339),
		"end_time":   b.EndTime.UTC().Format(time.RFC3339),
		"party_size": b.PartySize,
		"notes":      b.Notes,
		"status":     b.Status,
		"source":     b.Source,
	}
	if result.Warning != "" {
		data["warning"] = result.Warning
	}
	response.OK(c, http.StatusOK, data)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	var req tenant.FunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusOK, "INVALID_REQUEST", "Invalid function request wrapper.")
		return
	}

	args, err := ParseCancelArgs(req.Args)
	if err != nil {
		response.Fail(c, http.StatusOK, "INVALID_ARGS", err.Error())
		return
	}

	business, err := h.resolver.Resolve(c.Request.Context(), req.Call)
	if err != nil {
		failTenant(c, err, "cancelling booking")
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), business, args)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Fail(c, http.StatusOK, "BOOKING_NOT_FOUND", "Booking not found for this business.")
		default:
			response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue cancelling booking. Please transfer call.")
		}
		return
	}

	data := gin.H{
		"booking_id": result.Booking.ID,
		"status":     result.Booking.Status,
	}
	if result.Warning != "" {
		data["warning"] = result.Warning
	}
	response.OK(c, http.StatusOK, data)
}

func failTenant(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, tenant.ErrMissingContext):
		response.Fail(c, http.StatusOK, "MISSING_TENANT_CONTEXT", err.Error())
	case errors.Is(err, tenant.ErrResolutionFailed):
		response.Fail(c, http.StatusOK, "BUSINESS_NOT_FOUND", err.Error())
	default:
		response.Fail(c, http.StatusOK, "SYSTEM_DOWN", "Temporary issue "+action+". Please transfer call.")
	}
}

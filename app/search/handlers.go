package search

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joefazee/countrylookup/app/api"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/sanitizer"
	"github.com/joefazee/countrylookup/internal/validator"
	"github.com/joefazee/countrylookup/models"
)

// Handler handles HTTP requests for search sessions
type Handler struct {
	service   Service
	sanitizer sanitizer.HTMLStripperer
	logger    logger.Logger
}

// NewHandler creates a new session handler
func NewHandler(service Service, sanitizer sanitizer.HTMLStripperer, log logger.Logger) *Handler {
	return &Handler{
		service:   service,
		sanitizer: sanitizer,
		logger:    log,
	}
}

// CreateSession godoc
// @Summary Start a search session
// @Description Create a search session and return its bearer token. The first favorite is added from the reported location, or the default country.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest false "Initial location report"
// @Success 201 {object} api.Response{data=CreateSessionResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 503 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			api.BadRequestResponse(c, err.Error())
			return
		}
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrSessionLimit) {
			api.ErrorResponse(c, http.StatusServiceUnavailable, "SESSION_LIMIT", "Too many active sessions", nil)
			return
		}
		h.logger.Error(err, nil)
		api.InternalErrorResponse(c, "Failed to create session")
		return
	}

	api.CreatedResponse(c, "Session created successfully", resp)
}

// GetSession godoc
// @Summary Get session state
// @Description Return the search text, search state, favorites and pending alert
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=SnapshotResponse}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current [get]
func (h *Handler) GetSession(c *gin.Context) {
	session := sessionFrom(c)
	api.SuccessResponse(c, http.StatusOK, "Session retrieved successfully", ToSnapshotResponse(session.Coordinator.Snapshot()))
}

// SetQuery godoc
// @Summary Set the search text
// @Description Replace the search text. The search itself runs after a short debounce; poll the session or listen on the events stream for the result.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body QueryRequest true "Search text"
// @Success 200 {object} api.Response{data=SnapshotResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/query [put]
func (h *Handler) SetQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	req.Text = h.sanitizer.CleanText(req.Text)
	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	session := sessionFrom(c)
	if err := session.Coordinator.SetSearchText(req.Text); err != nil {
		h.handleError(c, err)
		return
	}

	api.UpdatedResponse(c, "Search text updated", ToSnapshotResponse(session.Coordinator.Snapshot()))
}

// AddFavorite godoc
// @Summary Add a search result to favorites
// @Description Add the search result at result_index to favorites
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddFavoriteRequest true "Result position"
// @Success 201 {object} api.Response{data=SnapshotResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/favorites [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	session := sessionFrom(c)
	snap := session.Coordinator.Snapshot()

	v := validator.New()
	v.Check(snap.State.Phase == PhaseSuccess, "result_index", "there are no search results to pick from")
	if v.Valid() {
		v.Check(*req.ResultIndex >= 0 && *req.ResultIndex < len(snap.State.Results), "result_index", models.ErrInvalidIndex.Error())
	}
	if !v.Valid() {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	if err := session.Coordinator.AddCountry(snap.State.Results[*req.ResultIndex]); err != nil {
		h.handleError(c, err)
		return
	}

	api.CreatedResponse(c, "Favorite added", ToSnapshotResponse(session.Coordinator.Snapshot()))
}

// RemoveFavorite godoc
// @Summary Remove a favorite
// @Description Remove the favorite at the given position
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param index path int true "Favorite position"
// @Success 200 {object} api.Response{data=SnapshotResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/favorites/{index} [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		api.BadRequestResponse(c, "index must be a number")
		return
	}

	session := sessionFrom(c)
	if session.Coordinator.RemoveCountry(index) == 0 {
		api.NotFoundResponse(c, "Favorite")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Favorite removed", ToSnapshotResponse(session.Coordinator.Snapshot()))
}

// DismissAlert godoc
// @Summary Dismiss the pending alert
// @Description Hide the alert and clear the search text
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=SnapshotResponse}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/alert/dismiss [post]
func (h *Handler) DismissAlert(c *gin.Context) {
	session := sessionFrom(c)
	if err := session.Coordinator.DismissAlert(); err != nil {
		h.handleError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Alert dismissed", ToSnapshotResponse(session.Coordinator.Snapshot()))
}

// ReportLocation godoc
// @Summary Report the client's location
// @Description Answer a pending location permission prompt or position request for this session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LocationRequest true "Permission and position"
// @Success 200 {object} api.Response
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/location [put]
func (h *Handler) ReportLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	if err := h.service.ReportLocation(c.Request.Context(), sessionFrom(c).ID, &req); err != nil {
		h.handleError(c, err)
		return
	}

	api.UpdatedResponse(c, "Location updated", nil)
}

// CloseSession godoc
// @Summary Close the session
// @Description Close the session and revoke its token
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current [delete]
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.service.CloseSession(c.Request.Context(), payloadFrom(c)); err != nil {
		h.handleError(c, err)
		return
	}

	api.DeletedResponse(c, "Session closed")
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrSessionClosed):
		api.GoneResponse(c, "Session has expired")
	case errors.Is(err, models.ErrInvalidCoordinate):
		api.ValidationErrorResponse(c, err.Error())
	default:
		h.logger.Error(err, nil)
		api.InternalErrorResponse(c, "Failed to process request")
	}
}

package countries

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/countrylookup/app/api"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/models"
)

// Handler handles HTTP requests for countries
type Handler struct {
	service Service
	logger  logger.Logger
}

// NewHandler creates a new country handler
func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// SearchByName godoc
// @Summary Search countries by name
// @Description Look up countries whose name matches the given text
// @Tags countries
// @Produce json
// @Produce text/markdown
// @Produce text/html
// @Param name path string true "Country name"
// @Param format query string false "json, markdown or html"
// @Success 200 {object} api.Response{data=[]CountryResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 502 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/countries/name/{name} [get]
func (h *Handler) SearchByName(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		api.ValidationErrorResponse(c, "format must be json, markdown or html")
		return
	}

	countries, err := h.service.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.respond(c, countries, format)
}

// SearchByCode godoc
// @Summary Get country by code
// @Description Get detailed information about a country using its 2 or 3 letter code
// @Tags countries
// @Produce json
// @Produce text/markdown
// @Produce text/html
// @Param code path string true "Country Code (2 or 3 letters)"
// @Param format query string false "json, markdown or html"
// @Success 200 {object} api.Response{data=[]CountryResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 502 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/countries/code/{code} [get]
func (h *Handler) SearchByCode(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		api.ValidationErrorResponse(c, "format must be json, markdown or html")
		return
	}

	countries, err := h.service.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.respond(c, countries, format)
}

func (h *Handler) respond(c *gin.Context, countries []models.Country, format Format) {
	if format == FormatJSON {
		api.ListResponse(c, "Countries retrieved successfully", ToCountryResponseList(countries), len(countries))
		return
	}

	doc, err := h.service.Render(countries, format)
	if err != nil {
		h.logger.Error(err, map[string]interface{}{"format": string(format)})
		api.InternalErrorResponse(c, "Failed to render countries")
		return
	}
	c.Data(http.StatusOK, format.ContentType(), []byte(doc))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCountryName):
		api.ValidationErrorResponse(c, "Country name must be between 1 and 100 characters")
	case errors.Is(err, models.ErrInvalidCountryCode):
		api.ValidationErrorResponse(c, "Country code must be 2 or 3 letters")
	default:
		if code, ok := models.StatusCodeOf(err); ok && code == http.StatusNotFound {
			api.NotFoundResponse(c, "Country")
			return
		}
		h.logger.Debug("country lookup error", map[string]interface{}{"error": err.Error()})
		api.UpstreamErrorResponse(c, Describe(err))
	}
}

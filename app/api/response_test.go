package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var response Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestSuccessResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		call       func(c *gin.Context)
		wantStatus int
		wantMsg    string
	}{
		{"SuccessResponse", func(c *gin.Context) { SuccessResponse(c, http.StatusOK, "ok", gin.H{"k": "v"}) }, http.StatusOK, "ok"},
		{"CreatedResponse", func(c *gin.Context) { CreatedResponse(c, "Session created", gin.H{"id": "1"}) }, http.StatusCreated, "Session created"},
		{"UpdatedResponse", func(c *gin.Context) { UpdatedResponse(c, "Query updated", gin.H{"id": "1"}) }, http.StatusOK, "Query updated"},
		{"DeletedResponse", func(c *gin.Context) { DeletedResponse(c, "Session closed") }, http.StatusOK, "Session closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.call(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decode(t, w)
			assert.True(t, response.Success)
			assert.Equal(t, tt.wantMsg, response.Message)
			assert.Nil(t, response.Error)
		})
	}
}

func TestListResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ListResponse(c, "Countries retrieved successfully", []string{"Egypt", "Sudan"}, 2)

	response := decode(t, w)
	assert.True(t, response.Success)

	metaBytes, err := json.Marshal(response.Meta)
	require.NoError(t, err)
	var meta ListMeta
	require.NoError(t, json.Unmarshal(metaBytes, &meta))
	assert.Equal(t, 2, meta.Count)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *gin.Context)
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"ErrorResponse", func(c *gin.Context) { ErrorResponse(c, http.StatusTeapot, "TEST", "msg", gin.H{"f": "e"}) }, http.StatusTeapot, "TEST", "msg"},
		{"ValidationErrorResponse", func(c *gin.Context) { ValidationErrorResponse(c, "bad code") }, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data"},
		{"BadRequestResponse", func(c *gin.Context) { BadRequestResponse(c, "invalid json") }, http.StatusBadRequest, "BAD_REQUEST", "Invalid request data"},
		{"NotFoundResponse", func(c *gin.Context) { NotFoundResponse(c, "Country") }, http.StatusNotFound, "NOT_FOUND", "Country not found"},
		{"UnauthorizedResponse", UnauthorizedResponse, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access"},
		{"InternalErrorResponse", func(c *gin.Context) { InternalErrorResponse(c, "boom") }, http.StatusInternalServerError, "INTERNAL_ERROR", "boom"},
		{"UpstreamErrorResponse", func(c *gin.Context) { UpstreamErrorResponse(c, "Error: 500") }, http.StatusBadGateway, "UPSTREAM_ERROR", "Error: 500"},
		{"GoneResponse", func(c *gin.Context) { GoneResponse(c, "Session closed") }, http.StatusGone, "GONE", "Session closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tt.call(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decode(t, w)
			assert.False(t, response.Success)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.wantCode, response.Error.Code)
			assert.Equal(t, tt.wantMsg, response.Error.Message)
		})
	}
}

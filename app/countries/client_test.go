package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const egyptPayload = `[{
	"name": {"common": "Egypt", "official": "Arab Republic of Egypt"},
	"currencies": {"EGP": {"name": "Egyptian pound", "symbol": "£"}},
	"capital": ["Cairo"],
	"flag": "🇪🇬",
	"cca2": "EG"
}]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{BaseURL: srv.URL + "/v3.1"}, srv.Client(), logger.NewNullLogger())
}

func TestClient_SearchByName(t *testing.T) {
	var gotPath, gotRawPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawPath = r.URL.EscapedPath()
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(egyptPayload))
	})

	countries, err := client.SearchByName(context.Background(), "Egypt")

	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "Egypt", countries[0].Name.Common)
	assert.Equal(t, "Cairo", countries[0].PrimaryCapital())
	assert.Equal(t, "/v3.1/name/Egypt", gotPath)
	assert.Equal(t, "/v3.1/name/Egypt", gotRawPath)
}

func TestClient_PercentEncodesPathSegment(t *testing.T) {
	var gotPath, gotRawPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.SearchByName(context.Background(), "united states/of?x")

	require.NoError(t, err)
	assert.Equal(t, "/v3.1/name/united states/of?x", gotPath)
	assert.Equal(t, "/v3.1/name/united%20states%2Fof%3Fx", gotRawPath)
}

func TestClient_SearchByCode(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(egyptPayload))
	})

	countries, err := client.SearchByCode(context.Background(), "EG")

	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "EG", countries[0].Code)
	assert.Equal(t, "/v3.1/alpha/EG", gotPath)
}

func TestClient_TrailingSlashBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(&Config{BaseURL: srv.URL + "/v3.1/"}, nil, nil)
	_, err := client.SearchByName(context.Background(), "Chad")

	require.NoError(t, err)
	assert.Equal(t, "/v3.1/name/Chad", gotPath)
}

func TestClient_StatusClassification(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusPaymentRequired, http.StatusInternalServerError, http.StatusMovedPermanently} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"status":404,"message":"Not Found"}`))
			})

			_, err := client.SearchByName(context.Background(), "Atlantis")

			code, ok := models.StatusCodeOf(err)
			require.True(t, ok, "expected a status error, got %v", err)
			assert.Equal(t, status, code)
		})
	}
}

func TestClient_DecodingFailed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object instead of array", `{"name": {"common": "Egypt"}}`},
		{"not json", `<html>oops</html>`},
		{"array of strings", `["Egypt"]`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.SearchByName(context.Background(), "Egypt")

			assert.ErrorIs(t, err, models.ErrDecodingFailed)
		})
	}
}

func TestClient_LenientRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"name": {"common": "Antarctica"}}]`))
	})

	countries, err := client.SearchByName(context.Background(), "Antarctica")

	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, models.Placeholder, countries[0].PrimaryCapital())
	assert.Equal(t, models.Placeholder, countries[0].Flag)
}

func TestClient_RequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient(&Config{BaseURL: baseURL}, nil, logger.NewNullLogger())
	_, err := client.SearchByName(context.Background(), "Egypt")

	assert.ErrorIs(t, err, models.ErrRequestFailed)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SearchByName(ctx, "Egypt")
	assert.ErrorIs(t, err, models.ErrRequestFailed)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "No countries found.", Describe(models.NewStatusError(404)))
	assert.Equal(t, "Error: 500", Describe(models.NewStatusError(500)))
	assert.Equal(t, "Network request failed. Please try again.", Describe(models.ErrRequestFailed))
	assert.Equal(t, "Failed to decode response.", Describe(models.ErrDecodingFailed))
	assert.Equal(t, "Failed to decode response.", Describe(assert.AnError))
}

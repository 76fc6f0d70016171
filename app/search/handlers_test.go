package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/joefazee/countrylookup/app/api"
	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/deps"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/sanitizer"
	"github.com/joefazee/countrylookup/internal/security"
	"github.com/joefazee/countrylookup/models"
)

const testSymmetricKey = "0123456789abcdefghijklmnopqrstuv"

type SessionHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	registry    *Registry
	revocations *cache.Revocations
	network     *fakeNetwork
}

func (suite *SessionHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *SessionHandlerTestSuite) SetupTest() {
	maker, err := security.NewPasetoMaker(testSymmetricKey)
	suite.Require().NoError(err)
	suite.revocations = cache.NewRevocations(cache.NewMemoryCache[string]())
	suite.network = &fakeNetwork{}

	container := deps.NewContainer(maker, sanitizer.NewHTMLStripper(), logger.NewNullLogger(), suite.revocations)
	container.RegisterService(countries.LookupKey, lookupFunc{
		byName: func(_ context.Context, name string) ([]models.Country, error) {
			if name == "Nowhere" {
				return nil, models.NewStatusError(http.StatusNotFound)
			}
			return []models.Country{country("Sudan"), country("South Sudan")}, nil
		},
		byCode: func(_ context.Context, code string) ([]models.Country, error) {
			return []models.Country{country("Egypt")}, nil
		},
	})

	locationCfg := location.GetDefaultConfig()
	locationCfg.Timeout = 10 * time.Millisecond
	suite.registry = InitServices(container, testConfig(), locationCfg, suite.network)

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	MountPublic(v1, container)
	MountAuthenticated(v1, container)
}

func (suite *SessionHandlerTestSuite) TearDownTest() {
	suite.registry.Close()
	_ = suite.revocations.Close()
}

func TestSessionHandler(t *testing.T) {
	suite.Run(t, new(SessionHandlerTestSuite))
}

func (suite *SessionHandlerTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, api.Response) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(AuthorizationHeaderKey, AuthorizationTypeBearer+" "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response api.Response
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func (suite *SessionHandlerTestSuite) decode(response api.Response, out interface{}) {
	raw, err := json.Marshal(response.Data)
	suite.Require().NoError(err)
	suite.Require().NoError(json.Unmarshal(raw, out))
}

func (suite *SessionHandlerTestSuite) snapshot(token string) SnapshotResponse {
	w, response := suite.do(http.MethodGet, "/api/v1/sessions/current", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var snap SnapshotResponse
	suite.decode(response, &snap)
	return snap
}

// createSession opens a session and waits for the location based auto-add.
func (suite *SessionHandlerTestSuite) createSession() CreateSessionResponse {
	w, response := suite.do(http.MethodPost, "/api/v1/sessions", "", CreateSessionRequest{
		Location: &LocationRequest{Authorization: "denied"},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created CreateSessionResponse
	suite.decode(response, &created)
	suite.Require().Eventually(func() bool {
		return len(suite.snapshot(created.Token).Favorites) == 1
	}, time.Second, 5*time.Millisecond)
	return created
}

func (suite *SessionHandlerTestSuite) waitForPhase(token, phase string) SnapshotResponse {
	var snap SnapshotResponse
	suite.Require().Eventually(func() bool {
		snap = suite.snapshot(token)
		return snap.State.Phase == phase
	}, time.Second, 5*time.Millisecond)
	return snap
}

func (suite *SessionHandlerTestSuite) TestCreateSession_AutoAddsDefaultCountry() {
	created := suite.createSession()

	suite.NotEmpty(created.Token)
	snap := suite.snapshot(created.Token)
	suite.Equal("Egypt", snap.Favorites[0].Name)
	suite.Equal("idle", snap.State.Phase)
}

func (suite *SessionHandlerTestSuite) TestCreateSession_NoBody() {
	w, response := suite.do(http.MethodPost, "/api/v1/sessions", "", nil)

	suite.Equal(http.StatusCreated, w.Code)
	var created CreateSessionResponse
	suite.decode(response, &created)
	suite.Eventually(func() bool {
		return len(suite.snapshot(created.Token).Favorites) == 1
	}, time.Second, 5*time.Millisecond, "location prompt times out and the default country is added")
}

func (suite *SessionHandlerTestSuite) TestCreateSession_InvalidLocation() {
	w, response := suite.do(http.MethodPost, "/api/v1/sessions", "", CreateSessionRequest{
		Location: &LocationRequest{Authorization: "granted", Latitude: ptr(120.0), Longitude: ptr(31.0)},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", response.Error.Code)
	suite.Equal(0, suite.registry.Len())
}

func (suite *SessionHandlerTestSuite) TestCreateSession_MalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *SessionHandlerTestSuite) TestAuth_MissingAndInvalidToken() {
	w, _ := suite.do(http.MethodGet, "/api/v1/sessions/current", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/sessions/current", "not-a-token", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *SessionHandlerTestSuite) TestAuth_ExpiredSession() {
	created := suite.createSession()
	suite.Require().NoError(suite.registry.Delete(created.SessionID))

	w, response := suite.do(http.MethodGet, "/api/v1/sessions/current", created.Token, nil)

	suite.Equal(http.StatusGone, w.Code)
	suite.Equal("GONE", response.Error.Code)
}

func (suite *SessionHandlerTestSuite) TestSetQuery_SearchesAndSanitizes() {
	created := suite.createSession()

	w, response := suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "<b>Sudan</b>"})
	suite.Require().Equal(http.StatusOK, w.Code)
	var snap SnapshotResponse
	suite.decode(response, &snap)
	suite.Equal("Sudan", snap.SearchText)

	snap = suite.waitForPhase(created.Token, "success")
	suite.Len(snap.State.Results, 2)
}

func (suite *SessionHandlerTestSuite) TestSetQuery_NotFound() {
	created := suite.createSession()

	suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "Nowhere"})

	snap := suite.waitForPhase(created.Token, "error")
	suite.Equal("No countries found.", snap.State.Message)
}

func (suite *SessionHandlerTestSuite) TestSetQuery_Offline() {
	created := suite.createSession()
	suite.network.offline.Store(true)

	suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "Sudan"})

	var snap SnapshotResponse
	suite.Require().Eventually(func() bool {
		snap = suite.snapshot(created.Token)
		return snap.Alert != nil
	}, time.Second, 5*time.Millisecond)
	suite.Equal("No Internet Connection", snap.Alert.Title)
	suite.Equal("idle", snap.State.Phase)
}

func (suite *SessionHandlerTestSuite) TestAddAndRemoveFavorites() {
	created := suite.createSession()

	w, response := suite.do(http.MethodPost, "/api/v1/sessions/current/favorites", created.Token, AddFavoriteRequest{ResultIndex: ptr(0)})
	suite.Equal(http.StatusBadRequest, w.Code, "no results yet")
	suite.Equal("VALIDATION_ERROR", response.Error.Code)

	suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "Sudan"})
	suite.waitForPhase(created.Token, "success")

	w, _ = suite.do(http.MethodPost, "/api/v1/sessions/current/favorites", created.Token, AddFavoriteRequest{ResultIndex: ptr(5)})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, response = suite.do(http.MethodPost, "/api/v1/sessions/current/favorites", created.Token, AddFavoriteRequest{ResultIndex: ptr(1)})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var snap SnapshotResponse
	suite.decode(response, &snap)
	suite.Len(snap.Favorites, 2)
	suite.Equal("South Sudan", snap.Favorites[1].Name)
	suite.Empty(snap.SearchText)

	w, _ = suite.do(http.MethodDelete, "/api/v1/sessions/current/favorites/7", created.Token, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/sessions/current/favorites/first", created.Token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, response = suite.do(http.MethodDelete, "/api/v1/sessions/current/favorites/0", created.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(response, &snap)
	suite.Len(snap.Favorites, 1)
	suite.Equal("South Sudan", snap.Favorites[0].Name)
}

func (suite *SessionHandlerTestSuite) TestAddFavorite_MissingIndex() {
	created := suite.createSession()

	w, response := suite.do(http.MethodPost, "/api/v1/sessions/current/favorites", created.Token, map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("BAD_REQUEST", response.Error.Code)
}

func (suite *SessionHandlerTestSuite) TestDismissAlert() {
	created := suite.createSession()
	suite.network.offline.Store(true)
	suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "Sudan"})
	suite.Require().Eventually(func() bool {
		return suite.snapshot(created.Token).Alert != nil
	}, time.Second, 5*time.Millisecond)

	w, response := suite.do(http.MethodPost, "/api/v1/sessions/current/alert/dismiss", created.Token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var snap SnapshotResponse
	suite.decode(response, &snap)
	suite.Nil(snap.Alert)
	suite.Empty(snap.SearchText)
}

func (suite *SessionHandlerTestSuite) TestReportLocation() {
	created := suite.createSession()

	w, _ := suite.do(http.MethodPut, "/api/v1/sessions/current/location", created.Token, LocationRequest{Authorization: "restricted"})
	suite.Equal(http.StatusOK, w.Code)

	session, err := suite.registry.Get(created.SessionID)
	suite.Require().NoError(err)
	suite.Equal(location.AuthorizationRestricted, session.Platform.AuthorizationStatus())

	w, response := suite.do(http.MethodPut, "/api/v1/sessions/current/location", created.Token, LocationRequest{Authorization: "maybe"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", response.Error.Code)
	suite.Contains(w.Body.String(), `"authorization"`)
}

func (suite *SessionHandlerTestSuite) TestCloseSession_RevokesToken() {
	created := suite.createSession()

	w, _ := suite.do(http.MethodDelete, "/api/v1/sessions/current", created.Token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(0, suite.registry.Len())

	w, response := suite.do(http.MethodGet, "/api/v1/sessions/current", created.Token, nil)
	suite.Equal(http.StatusUnauthorized, w.Code, "revoked token is rejected before the session lookup")
	suite.Equal("UNAUTHORIZED", response.Error.Code)
}

func (suite *SessionHandlerTestSuite) TestEvents_StreamsSnapshots() {
	created := suite.createSession()
	server := httptest.NewServer(suite.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sessions/current/events?token=" + created.Token
	conn, _, err := websocket.Dial(ctx, url, nil)
	suite.Require().NoError(err)
	defer conn.CloseNow()

	var first SnapshotResponse
	suite.Require().NoError(wsjson.Read(ctx, conn, &first))
	suite.Len(first.Favorites, 1)

	suite.do(http.MethodPut, "/api/v1/sessions/current/query", created.Token, QueryRequest{Text: "Sudan"})

	for {
		var snap SnapshotResponse
		suite.Require().NoError(wsjson.Read(ctx, conn, &snap))
		suite.GreaterOrEqual(snap.Version, first.Version)
		if snap.State.Phase == "success" {
			suite.Equal("Sudan", snap.SearchText)
			break
		}
	}

	suite.Require().NoError(suite.registry.Delete(created.SessionID))
	for err == nil {
		_, _, err = conn.Read(ctx)
	}
	suite.Equal(websocket.StatusGoingAway, websocket.CloseStatus(err))
}

func (suite *SessionHandlerTestSuite) TestEvents_RequiresToken() {
	w, _ := suite.do(http.MethodGet, "/api/v1/sessions/current/events", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

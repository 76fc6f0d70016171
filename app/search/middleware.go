package search

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joefazee/countrylookup/app/api"
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/security"
	"github.com/joefazee/countrylookup/models"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	// TokenQueryKey lets browser websocket clients, which cannot set headers, authenticate.
	TokenQueryKey = "token"

	sessionContextKey = "session"
	payloadContextKey = "sessionPayload"
)

// SessionAuth verifies the bearer token, rejects revoked tokens and loads the
// session the token was issued for.
func SessionAuth(tokenMaker security.Maker, revocations *cache.Revocations, service Service, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c, allowQueryToken)
		if !ok {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := tokenMaker.VerifyToken(token)
		if err != nil {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), payload.ID.String())
			if err != nil {
				api.InternalErrorResponse(c, "Could not verify session token")
				c.Abort()
				return
			}
			if revoked {
				api.UnauthorizedResponse(c)
				c.Abort()
				return
			}
		}

		session, err := service.GetSession(c.Request.Context(), payload.SessionID)
		if err != nil {
			if errors.Is(err, models.ErrSessionNotFound) {
				api.GoneResponse(c, "Session has expired")
			} else {
				api.InternalErrorResponse(c, "Could not load session")
			}
			c.Abort()
			return
		}

		c.Set(payloadContextKey, payload)
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQueryToken bool) (string, bool) {
	header := c.GetHeader(AuthorizationHeaderKey)
	if header == "" {
		if allowQueryToken {
			if token := c.Query(TokenQueryKey); token != "" {
				return token, true
			}
		}
		return "", false
	}

	fields := strings.Fields(header)
	if len(fields) < 2 || fields[0] != AuthorizationTypeBearer {
		return "", false
	}
	return fields[1], true
}

func sessionFrom(c *gin.Context) *Session {
	return c.MustGet(sessionContextKey).(*Session)
}

func payloadFrom(c *gin.Context) *security.Payload {
	return c.MustGet(payloadContextKey).(*security.Payload)
}

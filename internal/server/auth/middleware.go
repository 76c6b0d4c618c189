package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/gin-gonic/gin"
)

// Authenticator derives an Identity from the Authorization header. It never
// rejects a request: any problem with the credential downgrades the request
// to anonymous and access decisions are left to the resolvers.
type Authenticator struct {
	secret []byte
	logger logging.Logger
}

func NewAuthenticator(secretKey string, l logging.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secretKey), logger: l.With("module", "auth")}
}

// Identify parses an Authorization header value of the form
// "<scheme> <token>".
func (a *Authenticator) Identify(header string) (Identity, error) {
	if header == "" {
		return Identity{}, nil
	}

	parts := strings.Fields(header)
	if len(parts) < 2 {
		return Identity{}, common.ErrInvalidToken
	}

	claims, err := ParseToken(parts[1], a.secret)
	if err != nil {
		return Identity{}, err
	}

	return Identity{Authenticated: true, UserID: claims.UserID, Email: claims.Email}, nil
}

// Handler is the net/http form of the middleware.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(rw, req.WithContext(a.attach(req)))
	})
}

// Gin is the gin form of the middleware; it calls c.Next exactly once.
func (a *Authenticator) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(a.attach(c.Request))
		c.Next()
	}
}

func (a *Authenticator) attach(req *http.Request) context.Context {
	ctx := req.Context()
	id, err := a.Identify(req.Header.Get(common.AuthorizationHeaderName))
	if err != nil {
		a.logger.Debug(ctx, "request downgraded to anonymous", "reason", err.Error())
	}
	return WithIdentity(ctx, id)
}

package identity

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"devdir/internal/auth"
	apperrors "devdir/internal/errors"
)

const (
	tokenContextKey   = "token"
	invalidContextKey = "token_error"
)

// Resolver turns bearer credentials into principals.
type Resolver struct {
	jwtService *auth.JWTService
	tokens     auth.TokenStoreInterface
	logger     *slog.Logger
}

// NewResolver creates a resolver backed by the JWT service and the revocation store.
func NewResolver(jwtService *auth.JWTService, tokens auth.TokenStoreInterface, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{jwtService: jwtService, tokens: tokens, logger: logger}
}

// Resolve maps a raw credential to a principal. An empty credential is Anonymous;
// anything that does not verify is Invalid.
func (r *Resolver) Resolve(ctx context.Context, credential string) Principal {
	if credential == "" {
		return Anonymous()
	}
	claims, err := r.jwtService.ValidateAccessToken(credential)
	if err != nil {
		return Invalid()
	}
	return r.fromClaims(ctx, claims)
}

func (r *Resolver) fromClaims(ctx context.Context, claims *auth.Claims) Principal {
	if claims == nil || claims.Type != auth.TokenTypeAccess {
		return Invalid()
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil || !claims.Role.Valid() {
		return Invalid()
	}
	if r.tokens != nil && claims.ID != "" {
		revoked, _ := r.tokens.IsAccessTokenBlacklisted(ctx, claims.ID)
		if revoked {
			return Invalid()
		}
	}
	return Authenticated(userID, claims.Role)
}

// Middleware parses an optional bearer token and stores the resulting principal
// in the request context. It never rejects a request; see RequireAuthenticated.
func (r *Resolver) Middleware() echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		SigningKey:    r.jwtService.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// No header means anonymous; a header that fails to parse is invalid.
			if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
				c.Set(invalidContextKey, err)
			}
			return nil
		},
		ContinueOnIgnoredError: true,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(func(c echo.Context) error {
			ctx := c.Request().Context()
			p := Anonymous()
			if err, ok := c.Get(invalidContextKey).(error); ok {
				r.logger.DebugContext(ctx, "rejected bearer token", "error", err)
				p = Invalid()
			} else if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok {
				claims, _ := token.Claims.(*auth.Claims)
				p = r.fromClaims(ctx, claims)
			}
			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			return next(c)
		})
	}
}

// RequireAuthenticated rejects requests whose principal is Anonymous or Invalid.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !FromContext(c.Request().Context()).IsAuthenticated() {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrAuthenticationRequired)
				return echo.NewHTTPError(http.StatusUnauthorized, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

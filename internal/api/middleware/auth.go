package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// TokenRevocations reports whether a token ID has been revoked. Implemented
// by the Redis blacklist behind logout.
type TokenRevocations interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth validates the JWT, rejects revoked tokens, and injects the identity
// claims into context.
func Auth(jwtSecret string, revoked TokenRevocations, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// The blacklist lookup is best-effort: a store outage must not
			// lock every user out.
			if jti, _ := claims["jti"].(string); jti != "" && revoked != nil {
				hit, err := revoked.IsRevoked(c.Request().Context(), jti)
				if err != nil {
					log.Warn().Err(err).Msg("revocation lookup failed, allowing request")
				} else if hit {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set("user_id", claims["sub"])
			c.Set("username", claims["username"])
			c.Set("role", claims["role"])
			c.Set("full_name", claims["full_name"])

			return next(c)
		}
	}
}

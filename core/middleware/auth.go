package middleware

import (
	stderrors "errors"
	"net/http"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/controller"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware decodes the bearer token issued by the login service and
// stores its claims under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}

			claims, err := utils.ValidateAndParseToken(token, m.jwtSecret)
			if err != nil {
				if stderrors.Is(err, jwt.ErrTokenExpired) {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrTokenExpired, "token expired")
				}
				logger.Info("Middleware:AuthMiddleware:InvalidToken", "error", err)
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "invalid token")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// TokenClaims returns the identity placed on the context by AuthMiddleware.
func TokenClaims(c echo.Context) (*utils.TokenClaims, bool) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims, ok && claims != nil
}

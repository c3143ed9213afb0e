package api

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const KeyCurrentUser = "current_user"

func LoginRequired(authorizer *authapp.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return JsonError(c, http.StatusUnauthorized, "Invalid Authorization header")
			}
			user, err := authorizer.ValidateAccessToken(parts[1])
			if err != nil {
				if errors.Is(err, authapp.ErrAccessTokenExpired) {
					return JsonError(c, http.StatusUnauthorized, "access token expired")
				}
				return JsonError(c, http.StatusUnauthorized, err.Error())
			}
			c.Set(KeyCurrentUser, user)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) string {
	return c.Get(KeyCurrentUser).(*authapp.AccessTokenData).UserID
}

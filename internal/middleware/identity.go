package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"              // HTTP status codes for responses
    "strings"               // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// OptionalIdentity returns an Echo middleware that resolves a Bearer access
// token to a user id when one is presented and simply continues as a guest
// otherwise.  The room endpoints are usable anonymously; personalization
// (deck settings, watch prompts, watched-title exclusion) activates only
// for identified callers.  A token that is present but invalid is rejected
// rather than silently downgraded to guest, so clients notice expired
// credentials instead of losing their personalization.
func OptionalIdentity(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                // No credential: proceed as guest.
                return next(c)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            if sub, ok := claims["sub"].(string); ok && sub != "" {
                c.Set("user_id", sub)
            }
            return next(c)
        }
    }
}

// RequireIdentity wraps a handler group that cannot serve guests, such as
// deck settings and watch prompts.  It must run after OptionalIdentity.
func RequireIdentity() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if UserID(c) == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            return next(c)
        }
    }
}

// UserID extracts the resolved user id from context, or "" for guests.
func UserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok {
            return s
        }
    }
    return ""
}

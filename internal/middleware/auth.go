package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/termine-api/internal/config"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/models"
)

const ContextUser = "user"

// UserFinder loads the account behind a token on every request, so role and
// coupon changes apply without a new login.
type UserFinder interface {
	FindUser(ctx context.Context, userName string) (*models.User, error)
}

// GenerateToken signs a token whose subject is the user name.
func GenerateToken(secret string, userName string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userName,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func AuthMiddleware(cfg *config.Config, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Anmeldung erforderlich.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Anmeldung erforderlich.")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Sitzung abgelaufen.")
			return
		}

		userName, err := token.Claims.GetSubject()
		if err != nil || userName == "" {
			httperr.Unauthorized(c, "invalid_token_payload", "Sitzung abgelaufen.")
			return
		}

		user, err := users.FindUser(c.Request.Context(), userName)
		if err != nil {
			if httperr.KindOf(err) == httperr.KindNotFound {
				httperr.Unauthorized(c, "unknown_user", "Benutzer existiert nicht mehr.")
				return
			}
			httperr.Internal(c, "internal_error", "Interner Fehler.")
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the account loaded by AuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentUser(c).IsAdmin() {
			httperr.Forbidden(c, "admin_only", "Nur für Administratoren.")
			return
		}
		c.Next()
	}
}

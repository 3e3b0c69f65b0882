package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/termine-api/internal/config"
	"github.com/BruksfildServices01/termine-api/internal/dto"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/middleware"
	"github.com/BruksfildServices01/termine-api/internal/ratelimit"
	ucUser "github.com/BruksfildServices01/termine-api/internal/usecase/user"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

type AuthHandler struct {
	authenticate *ucUser.Authenticate
	limiter      *ratelimit.LoginLimiter
	config       *config.Config
	log          *logging.Logger
}

func NewAuthHandler(
	authenticate *ucUser.Authenticate,
	limiter *ratelimit.LoginLimiter,
	cfg *config.Config,
	log *logging.Logger,
) *AuthHandler {
	if log == nil {
		log = logging.Default()
	}
	return &AuthHandler{
		authenticate: authenticate,
		limiter:      limiter,
		config:       cfg,
		log:          log,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Benutzername und Passwort erforderlich.")
		return
	}

	ctx := c.Request.Context()
	userName := strings.TrimSpace(req.UserName)

	// a limiter outage must not lock everybody out
	blocked, err := h.limiter.Blocked(ctx, userName)
	if err != nil {
		h.log.Warn("login limiter unavailable", "error", err)
	}
	if blocked {
		httperr.TooManyRequests(c, "too_many_attempts", "Zu viele Anmeldeversuche.")
		return
	}

	user, err := h.authenticate.Execute(ctx, userName, req.Password)
	if err != nil {
		if errors.Is(err, ucUser.ErrInvalidCredentials) {
			if err := h.limiter.Fail(ctx, userName); err != nil {
				h.log.Warn("login limiter unavailable", "error", err)
			}
			httperr.Unauthorized(c, "invalid_credentials", "Benutzername oder Passwort falsch.")
			return
		}
		httperr.FromError(c, err)
		return
	}

	if err := h.limiter.Reset(ctx, userName); err != nil {
		h.log.Warn("login limiter unavailable", "error", err)
	}

	// exp is checked against the wall clock, not the booking clock
	token, err := middleware.GenerateToken(h.config.JWTSecret, user.UserName, h.config.JWTExpire, time.Now())
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Interner Fehler.")
		return
	}

	h.log.Info("login", "user", user.UserName)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  meResponse(user),
	})
}

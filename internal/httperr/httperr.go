package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Gone(c *gin.Context, code, message string) {
	Write(c, http.StatusGone, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func TooManyRequests(c *gin.Context, code, message string) {
	Write(c, http.StatusTooManyRequests, code, message)
}

// Status maps an error to the HTTP status it is surfaced with.
// Missing and exhausted resources are both reported as gone.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound, KindExhausted:
		return http.StatusGone
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for err.
func FromError(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "Interner Fehler.")
		return
	}

	switch be.Kind {
	case KindNotFound:
		Gone(c, be.Code, "Termin nicht mehr verfügbar.")
	case KindExhausted:
		Gone(c, be.Code, "Keine freien Termine mehr in diesem Zeitfenster.")
	default:
		BadRequest(c, be.Code, "Ungültige Anfrage.")
	}
}

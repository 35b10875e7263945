package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"hangout/internal/domain"
)

var kindStatus = []struct {
	kind   error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrInvalidState, http.StatusConflict},
	{domain.ErrAlreadyExists, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrNoOptions, http.StatusUnprocessableEntity},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
}

func statusFor(err error) int {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	s.writeError(c, err)
	c.Abort()
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	code := domain.Code(err)
	if code == "" {
		if status == http.StatusInternalServerError {
			code = "internal"
		} else {
			code = err.Error()
		}
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"event", "http_internal_error",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err.Error(),
		)
	}
	c.JSON(status, gin.H{"code": code, "message": s.message(c, err, status)})
}

func (s *Server) message(c *gin.Context, err error, status int) string {
	if s.messages != nil {
		return s.messages.Error(s.requestLocale(c), err)
	}
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// requestLocale picks the caller's preferred language from Accept-Language.
func (s *Server) requestLocale(c *gin.Context) string {
	tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return s.locale
	}
	return tags[0].String()
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_body", "message": err.Error()})
}

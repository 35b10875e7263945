// Package httpapi exposes the engine over a JSON API: the poll surface that
// clients refresh, plus the commands behind it.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hangout/internal/application"
	"hangout/internal/ports/input"
)

// ErrorMessages renders a localized, user-facing message for a domain error.
type ErrorMessages interface {
	Error(locale string, err error) string
}

type Options struct {
	JWTSecret     string
	DefaultLocale string
	Messages      ErrorMessages
	Logger        *slog.Logger
}

type Server struct {
	svc       input.UseCases
	jwtSecret []byte
	locale    string
	messages  ErrorMessages
	logger    *slog.Logger
}

func New(svc input.UseCases, opts Options) *Server {
	locale := opts.DefaultLocale
	if locale == "" {
		locale = "en"
	}
	return &Server{
		svc:       svc,
		jwtSecret: []byte(opts.JWTSecret),
		locale:    locale,
		messages:  opts.Messages,
		logger:    application.ResolveLogger(opts.Logger),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	public := r.Group("/api")
	public.POST("/invites/:token/guests", s.joinAsGuest)
	public.POST("/invites/:token/guests/:guestId/claim", s.claimGuest)

	authed := r.Group("/api")
	authed.Use(s.authenticate())
	authed.GET("/me", s.me)

	authed.POST("/hangouts", s.requireRegistered(), s.createHangout)
	authed.GET("/hangouts/:id", s.requireMember(), s.getHangout)
	authed.GET("/hangouts/:id/status", s.requireMember(), s.status)
	authed.POST("/hangouts/:id/voting", s.openVoting)
	authed.POST("/hangouts/:id/end-voting", s.endVoting)
	authed.POST("/hangouts/:id/resolve", s.resolve)
	authed.POST("/hangouts/:id/cancel", s.cancel)
	authed.POST("/hangouts/:id/complete", s.complete)

	authed.GET("/hangouts/:id/options", s.requireMember(), s.listOptions)
	authed.POST("/hangouts/:id/options", s.addOption)
	authed.GET("/hangouts/:id/time-options", s.requireMember(), s.listTimeOptions)
	authed.POST("/hangouts/:id/time-options", s.addTimeOption)
	authed.PUT("/options/:optionId/vote", s.castVote)
	authed.PUT("/time-options/:optionId/vote", s.castTimeVote)
	authed.GET("/hangouts/:id/tally", s.requireMember(), s.tally)

	authed.PUT("/hangouts/:id/rsvp", s.setRsvp)
	authed.GET("/hangouts/:id/rsvp", s.requireMember(), s.rsvpSummary)
	authed.GET("/hangouts/:id/members", s.requireMember(), s.listMembers)
	authed.POST("/hangouts/:id/members", s.addMember)
	authed.DELETE("/hangouts/:id/members/me", s.leave)
	authed.DELETE("/memberships/:membershipId", s.removeMember)
	authed.PUT("/memberships/:membershipId/mandatory", s.setMandatory)

	authed.POST("/hangouts/:id/invite", s.inviteToken)
	authed.POST("/invites/:token/join", s.requireRegistered(), s.joinWithInvite)
	authed.POST("/guests/upgrade", s.requireRegistered(), s.upgradeGuest)
	return r
}

// Run serves the API on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "event", "http_listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"event", "http_request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

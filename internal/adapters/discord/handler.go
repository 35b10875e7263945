package discord

import (
	"log/slog"
	"time"

	"hangout/internal/application"
	"hangout/internal/ports/input"
	"hangout/internal/ports/output"
	"hangout/pkg/tz"
)

// Translator renders bot strings and domain errors.
type Translator interface {
	output.T
	Error(locale string, err error) string
}

// Handler handles Discord interactions using use cases.
type Handler struct {
	uc            input.UseCases
	tr            Translator
	defaultLocale string
	linkBaseURL   string
	loc           *time.Location
	logger        *slog.Logger
}

type HandlerOptions struct {
	DefaultLocale string
	LinkBaseURL   string
	Location      *time.Location
	Logger        *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(uc input.UseCases, tr Translator, opts HandlerOptions) *Handler {
	h := &Handler{
		uc:            uc,
		tr:            tr,
		defaultLocale: opts.DefaultLocale,
		linkBaseURL:   opts.LinkBaseURL,
		loc:           opts.Location,
		logger:        application.ResolveLogger(opts.Logger),
	}
	if h.defaultLocale == "" {
		h.defaultLocale = "en"
	}
	if h.loc == nil {
		h.loc = tz.Paris
	}
	return h
}

func (h *Handler) translate(locale, key string, data map[string]any) string {
	return h.tr.T(locale, key, data)
}

package slognotify

// Package slognotify surfaces user-facing notices through structured
// logging. The browser picks notices up from response payloads; this adapter
// keeps an operator-visible trail of what was shown.

import (
	"context"
	"log/slog"

	"github.com/probeops/console/internal/ports"
)

// Notifier logs every notice at a level matching its severity.
type Notifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier constructs a Notifier. A nil logger falls back to the default.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger.With("component", "notify")}
}

// Notify records the notice. Delivery is best-effort by contract, and a log
// line cannot fail in a way the session lifecycle should care about.
func (n *Notifier) Notify(ctx context.Context, profileID string, notice ports.Notice) {
	attrs := []any{
		"profile_id", profileID,
		"title", notice.Title,
		"message", notice.Message,
	}
	switch notice.Level {
	case ports.NoticeError:
		n.logger.ErrorContext(ctx, "notice", attrs...)
	case ports.NoticeWarning:
		n.logger.WarnContext(ctx, "notice", attrs...)
	default:
		n.logger.InfoContext(ctx, "notice", attrs...)
	}
}

// Package compose validates and sends broadcast and event-scoped
// notifications.
package compose

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/campus-inbox/internal/model"
	"github.com/nhle/campus-inbox/internal/toast"
	"github.com/nhle/campus-inbox/internal/validate"
)

// InvalidStatus is the inline status shown when a submit is attempted
// without a title or message.
const InvalidStatus = "Title and message are required"

// Validate checks the trimmed draft. Failures are validate.Errors keyed
// by "title", "message" and "urgency".
func Validate(draft model.NotificationDraft) error {
	return validate.Struct(draft.Trimmed())
}

// CanSubmit reports whether title and message are both non-blank.
func CanSubmit(draft model.NotificationDraft) bool {
	return Validate(draft) == nil
}

// Outcome is the result of one Submit.
type Outcome struct {
	// Sent is true when the server accepted the notification. The caller
	// clears its form and refreshes whatever list shows the target.
	Sent bool

	// Status is the inline text to show under the form.
	Status string

	Err error
}

// Sender submits drafts and reports the result as toasts.
type Sender struct {
	toasts toast.Publisher
	logger *zap.Logger
}

// NewSender returns a Sender publishing on toasts.
func NewSender(toasts toast.Publisher, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{toasts: toasts, logger: logger}
}

// Submit validates draft and sends its trimmed form to target. An invalid
// draft never reaches the target.
func (s *Sender) Submit(ctx context.Context, target Target, draft model.NotificationDraft) Outcome {
	labels := target.Labels()

	if err := Validate(draft); err != nil {
		if labels.InvalidToast != "" {
			s.publish(toast.SeverityError, labels.InvalidToast, labels)
		}
		return Outcome{Status: InvalidStatus, Err: err}
	}

	if err := target.Send(ctx, draft.Trimmed()); err != nil {
		if errors.Is(err, context.Canceled) {
			return Outcome{Err: err}
		}
		s.logger.Warn("sending notification", zap.Stringer("target", target), zap.Error(err))
		s.publish(toast.SeverityError, labels.FailedToast, labels)
		return Outcome{Status: labels.FailedStatus, Err: err}
	}

	s.publish(toast.SeveritySuccess, labels.SentToast, labels)
	return Outcome{Sent: true, Status: labels.SentStatus}
}

func (s *Sender) publish(sev toast.Severity, text string, labels Labels) {
	if s.toasts == nil {
		return
	}
	s.toasts.Publish(toast.Toast{Text: text, Severity: sev, Duration: labels.ToastDuration})
}

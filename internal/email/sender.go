package email

import (
	"context"
	"errors"
	"time"
)

// Purpose identifica el flujo que origina el correo; el asunto y el texto
// del mensaje dependen de el.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

// Sender define la interfaz para envio de codigos de verificacion. El envio
// es best-effort: los workflows no dependen del resultado.
type Sender interface {
	SendVerificationCode(ctx context.Context, toEmail string, code string, purpose Purpose, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationCode(_ context.Context, _ string, _ string, _ Purpose, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

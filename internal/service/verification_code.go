package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"ghostauth/internal/email"
)

// NewVerificationCode genera un codigo de desafio de 6 digitos decimales,
// uniforme sobre 000000..999999.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// sendCodeAsync despacha el codigo por correo sin bloquear el workflow; un
// fallo de envio solo se loguea, nunca se propaga al caller.
func sendCodeAsync(logger *zap.Logger, sender email.Sender, toEmail, code string, purpose email.Purpose, ttl time.Duration) {
	if sender == nil {
		return
	}
	expiresAt := time.Now().UTC().Add(ttl)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sender.SendVerificationCode(ctx, toEmail, code, purpose, expiresAt); err != nil && logger != nil {
			logger.Warn("send verification code failed", zap.Error(err), zap.String("email", toEmail))
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ghostauth/internal/cipherbox"
	"ghostauth/internal/domain"
	"ghostauth/internal/email"
	"ghostauth/internal/repository"
	"ghostauth/internal/token"
)

// PasswordResetService corre el desafio/respuesta de reseteo en tres pasos:
// Request emite un password_verify con el codigo cifrado embebido, VerifyCode
// lo canjea por un password_reset sin secreto, y Reset aplica la mutacion.
type PasswordResetService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	codec     *token.Codec
	cipherKey []byte
	sender    email.Sender
	used      ConsumeOnceStore
}

func NewPasswordResetService(
	logger *zap.Logger,
	users repository.UserRepository,
	codec *token.Codec,
	cipherKey []byte,
	sender email.Sender,
	used ConsumeOnceStore,
) *PasswordResetService {
	return &PasswordResetService{
		logger:    logger,
		users:     users,
		codec:     codec,
		cipherKey: cipherKey,
		sender:    sender,
		used:      used,
	}
}

// Request genera el codigo de desafio y lo despacha por correo; devuelve el
// password_verify token que lo transporta cifrado.
func (s *PasswordResetService) Request(ctx context.Context, emailOrUsername string) (string, error) {
	user, err := s.users.GetByEmailOrUsername(ctx, strings.TrimSpace(emailOrUsername))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.E(domain.KindNotFound, "user not found")
		}
		return "", err
	}

	code, err := NewVerificationCode()
	if err != nil {
		return "", err
	}
	encCode, err := cipherbox.Encrypt(code, s.cipherKey)
	if err != nil {
		return "", err
	}

	verificationToken, err := s.codec.Issue(user.ID, token.Claims{
		TokenType:    token.TypePasswordVerify,
		EncResetCode: encCode,
	}, token.IntermediateTTL)
	if err != nil {
		return "", err
	}

	sendCodeAsync(s.logger, s.sender, user.Email, code, email.PurposePasswordReset, token.IntermediateTTL)

	return verificationToken, nil
}

// VerifyCode canjea un password_verify valido y codigo correcto por un
// password_reset del mismo subject. El codigo ya cumplio su rol: el token
// resultante no embebe secreto alguno.
func (s *PasswordResetService) VerifyCode(ctx context.Context, verificationToken, code string) (string, error) {
	claims, err := s.codec.Verify(verificationToken)
	if err != nil || claims.TokenType != token.TypePasswordVerify {
		return "", domain.E(domain.KindUnauthenticated, "invalid token type")
	}

	embeddedCode, err := cipherbox.Decrypt(claims.EncResetCode, s.cipherKey)
	if err != nil {
		return "", domain.E(domain.KindUnauthenticated, "invalid verification token")
	}
	if subtle.ConstantTimeCompare([]byte(embeddedCode), []byte(code)) != 1 {
		return "", domain.E(domain.KindUnauthenticated, "invalid verification code")
	}

	if s.used != nil {
		ok, err := s.used.Consume(claims.ID, token.IntermediateTTL)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.E(domain.KindUnauthenticated, "invalid verification token")
		}
	}

	return s.codec.Issue(claims.Subject, token.Claims{
		TokenType: token.TypePasswordReset,
	}, token.IntermediateTTL)
}

// Reset aplica la password nueva. Los fallos de verificacion de este paso
// terminal reportan invalid-argument, no unauthenticated como los demas.
func (s *PasswordResetService) Reset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.codec.Verify(resetToken)
	if err != nil || claims.TokenType != token.TypePasswordReset {
		return domain.E(domain.KindInvalidArgument, "invalid or expired verification token")
	}

	if s.used != nil {
		ok, err := s.used.Consume(claims.ID, token.IntermediateTTL)
		if err != nil {
			return err
		}
		if !ok {
			return domain.E(domain.KindInvalidArgument, "invalid or expired verification token")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, claims.Subject, string(hash))
}

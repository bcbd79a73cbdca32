package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ghostauth/internal/domain"
	"ghostauth/internal/repository"
	"ghostauth/internal/token"
)

// EmailVerificationService marca emails como verificados. El email_verify
// token viaja por correo y no embebe secreto: su firma inadivinable es el
// secreto.
type EmailVerificationService struct {
	logger *zap.Logger
	users  repository.UserRepository
	codec  *token.Codec
}

func NewEmailVerificationService(logger *zap.Logger, users repository.UserRepository, codec *token.Codec) *EmailVerificationService {
	return &EmailVerificationService{
		logger: logger,
		users:  users,
		codec:  codec,
	}
}

// Start acuna un email_verify de vida larga para el usuario del email dado.
func (s *EmailVerificationService) Start(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.E(domain.KindNotFound, "user not found")
		}
		return "", err
	}
	return s.codec.Issue(user.ID, token.Claims{
		TokenType: token.TypeEmailVerify,
	}, token.EmailVerifyTTL)
}

// Finish consume un email_verify valido y marca el email como verificado.
func (s *EmailVerificationService) Finish(ctx context.Context, verificationToken string) error {
	claims, err := s.codec.Verify(verificationToken)
	if err != nil || claims.TokenType != token.TypeEmailVerify {
		return domain.E(domain.KindUnauthenticated, "invalid or expired verification token")
	}
	return s.users.MarkEmailVerified(ctx, claims.Subject)
}

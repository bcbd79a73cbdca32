package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ghostauth/internal/domain"
	"ghostauth/internal/repository"
	"ghostauth/internal/token"
)

// SessionService maneja login, refresh y logout sobre tokens de sesion.
type SessionService struct {
	logger *zap.Logger
	users  repository.UserRepository
	codec  *token.Codec
}

func NewSessionService(logger *zap.Logger, users repository.UserRepository, codec *token.Codec) *SessionService {
	return &SessionService{
		logger: logger,
		users:  users,
		codec:  codec,
	}
}

// Login autentica por email o username. Usuario inexistente y password
// incorrecta fallan con el mismo mensaje, sin distinguir la causa.
func (s *SessionService) Login(ctx context.Context, emailOrUsername, password string) (domain.User, token.Pair, error) {
	emailOrUsername = strings.TrimSpace(emailOrUsername)
	user, err := s.users.GetByEmailOrUsername(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, token.Pair{}, errInvalidCredentials()
		}
		return domain.User{}, token.Pair{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, token.Pair{}, errInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, token.Pair{}, errInvalidCredentials()
	}

	pair, err := s.codec.IssuePair(user)
	if err != nil {
		return domain.User{}, token.Pair{}, err
	}
	return user, pair, nil
}

// Refresh acuna una sesion nueva a partir de un refresh_token. Cualquier
// fallo (firma, expiracion, type equivocado, usuario borrado) responde
// igual.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil || claims.TokenType != token.TypeRefresh {
		return token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid refresh token")
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid refresh token")
	}
	pair, err := s.codec.IssuePair(user)
	if err != nil {
		return token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid refresh token")
	}
	return pair, nil
}

// Logout valida el access_token y confirma que el usuario sigue existiendo.
// No hay lista de revocacion server-side: el logout es solo un acuse.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Verify(accessToken)
	if err != nil || claims.TokenType != token.TypeAccess {
		return domain.E(domain.KindUnauthenticated, "invalid access token")
	}
	if _, err := s.users.GetByID(ctx, claims.Subject); err != nil {
		return domain.E(domain.KindUnauthenticated, "invalid access token")
	}
	return nil
}

func errInvalidCredentials() error {
	return domain.E(domain.KindUnauthenticated, "email or password is incorrect")
}

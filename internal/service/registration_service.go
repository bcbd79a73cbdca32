package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ghostauth/internal/cipherbox"
	"ghostauth/internal/domain"
	"ghostauth/internal/email"
	"ghostauth/internal/repository"
	"ghostauth/internal/token"
)

// RegistrationService orquesta la promocion fantasma → usuario confirmado.
// El estado intermedio viaja cifrado dentro del register_token; el registro
// fantasma solo ancla el subject y el enlace de auditoria.
type RegistrationService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	ghosts    repository.GhostRepository
	codec     *token.Codec
	cipherKey []byte
	sender    email.Sender
	used      ConsumeOnceStore
}

func NewRegistrationService(
	logger *zap.Logger,
	users repository.UserRepository,
	ghosts repository.GhostRepository,
	codec *token.Codec,
	cipherKey []byte,
	sender email.Sender,
	used ConsumeOnceStore,
) *RegistrationService {
	return &RegistrationService{
		logger:    logger,
		users:     users,
		ghosts:    ghosts,
		codec:     codec,
		cipherKey: cipherKey,
		sender:    sender,
		used:      used,
	}
}

// Start arranca un registro: persiste el fantasma, embebe los campos
// cifrados en un register_token de vida corta y despacha el codigo por
// correo. Ambos conflictos de unicidad se chequean y reportan juntos.
func (s *RegistrationService) Start(ctx context.Context, username, emailAddr, password string) (string, error) {
	username = strings.TrimSpace(username)
	emailAddr = normalizeEmail(emailAddr)

	emailTaken, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return "", err
	}
	usernameTaken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	var messages []string
	if emailTaken {
		messages = append(messages, fmt.Sprintf("email %s already in use", emailAddr))
	}
	if usernameTaken {
		messages = append(messages, fmt.Sprintf("username %s already in use", username))
	}
	if len(messages) > 0 {
		return "", domain.E(domain.KindConflict, strings.Join(messages, ", "))
	}

	code, err := NewVerificationCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	ghost := domain.PendingRegistration{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            emailAddr,
		PasswordHash:     string(hash),
		VerificationCode: code,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.ghosts.Create(ctx, ghost); err != nil {
		return "", err
	}

	encUsername, err := cipherbox.Encrypt(ghost.Username, s.cipherKey)
	if err != nil {
		return "", err
	}
	encEmail, err := cipherbox.Encrypt(ghost.Email, s.cipherKey)
	if err != nil {
		return "", err
	}
	encPassword, err := cipherbox.Encrypt(ghost.PasswordHash, s.cipherKey)
	if err != nil {
		return "", err
	}
	encCode, err := cipherbox.Encrypt(code, s.cipherKey)
	if err != nil {
		return "", err
	}

	registerToken, err := s.codec.Issue(ghost.ID, token.Claims{
		TokenType:   token.TypeRegister,
		EncUsername: encUsername,
		EncEmail:    encEmail,
		EncPassword: encPassword,
		EncCode:     encCode,
	}, token.IntermediateTTL)
	if err != nil {
		return "", err
	}

	sendCodeAsync(s.logger, s.sender, ghost.Email, code, email.PurposeRegistration, token.IntermediateTTL)

	return registerToken, nil
}

// Finish confirma el registro: compara el codigo contra el embebido en el
// token, re-chequea la carrera de unicidad, crea el User definitivo, enlaza
// el fantasma y acuna la sesion inicial.
func (s *RegistrationService) Finish(ctx context.Context, registerToken, code string) (domain.User, token.Pair, error) {
	claims, err := s.codec.Verify(registerToken)
	if err != nil || claims.TokenType != token.TypeRegister {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
	}

	embeddedCode, err := cipherbox.Decrypt(claims.EncCode, s.cipherKey)
	if err != nil {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
	}
	if subtle.ConstantTimeCompare([]byte(embeddedCode), []byte(code)) != 1 {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid verification code")
	}

	emailAddr, err := cipherbox.Decrypt(claims.EncEmail, s.cipherKey)
	if err != nil {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
	}

	// Guarda contra la carrera Start→Finish: el registro pudo completarse
	// por otro camino entre ambos pasos.
	exists, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return domain.User{}, token.Pair{}, err
	}
	if exists {
		return domain.User{}, token.Pair{}, domain.E(domain.KindConflict, "user already exists")
	}

	// La ausencia del fantasma no se distingue de un token invalido.
	ghost, err := s.ghosts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
		}
		return domain.User{}, token.Pair{}, err
	}

	if s.used != nil {
		ok, err := s.used.Consume(claims.ID, token.IntermediateTTL)
		if err != nil {
			return domain.User{}, token.Pair{}, err
		}
		if !ok {
			return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
		}
	}

	username, err := cipherbox.Decrypt(claims.EncUsername, s.cipherKey)
	if err != nil {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
	}
	passwordHash, err := cipherbox.Decrypt(claims.EncPassword, s.cipherKey)
	if err != nil {
		return domain.User{}, token.Pair{}, domain.E(domain.KindUnauthenticated, "invalid register token")
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, token.Pair{}, err
	}
	if err := s.ghosts.LinkToUser(ctx, ghost.ID, user.ID); err != nil {
		return domain.User{}, token.Pair{}, err
	}

	pair, err := s.codec.IssuePair(user)
	if err != nil {
		return domain.User{}, token.Pair{}, err
	}
	return user, pair, nil
}

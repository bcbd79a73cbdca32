package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ghostauth/internal/domain"
	"ghostauth/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger        *zap.Logger
	registration  *service.RegistrationService
	sessions      *service.SessionService
	passwordReset *service.PasswordResetService
	emailVerify   *service.EmailVerificationService
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(
	logger *zap.Logger,
	registration *service.RegistrationService,
	sessions *service.SessionService,
	passwordReset *service.PasswordResetService,
	emailVerify *service.EmailVerificationService,
) *AuthHandler {
	return &AuthHandler{
		logger:        logger,
		registration:  registration,
		sessions:      sessions,
		passwordReset: passwordReset,
		emailVerify:   emailVerify,
	}
}

// RegisterStart maneja POST /auth/register/start.
func (h *AuthHandler) RegisterStart(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register start request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	registerToken, err := h.registration.Start(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata":       metadata("Register ghost successful"),
		"register_token": registerToken,
	})
}

// RegisterFinish maneja POST /auth/register/finish.
func (h *AuthHandler) RegisterFinish(c *gin.Context) {
	var req struct {
		RegisterToken    string `json:"register_token" binding:"required"`
		VerificationCode string `json:"verification_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register finish request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, pair, err := h.registration.Finish(c.Request.Context(), req.RegisterToken, req.VerificationCode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata": metadata("Register successful"),
		"user":     user,
		"tokens":   pair,
	})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		EmailOrUsername string `json:"email_or_username" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, pair, err := h.sessions.Login(c.Request.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata": metadata("Login successful"),
		"user":     user,
		"tokens":   pair,
	})
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata": metadata("Refresh token successful"),
		"tokens":   pair,
	})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		AccessToken string `json:"access_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), req.AccessToken); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": metadata("Logout successful")})
}

// PasswordForgot maneja POST /auth/password/forgot.
func (h *AuthHandler) PasswordForgot(c *gin.Context) {
	var req struct {
		EmailOrUsername string `json:"email_or_username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password forgot request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	verificationToken, err := h.passwordReset.Request(c.Request.Context(), req.EmailOrUsername)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata":           metadata("Password reset code sent"),
		"verification_token": verificationToken,
	})
}

// PasswordVerify maneja POST /auth/password/verify.
func (h *AuthHandler) PasswordVerify(c *gin.Context) {
	var req struct {
		VerificationToken string `json:"verification_token" binding:"required"`
		Code              string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	resetToken, err := h.passwordReset.VerifyCode(c.Request.Context(), req.VerificationToken, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata":           metadata("Code verified"),
		"verification_token": resetToken,
	})
}

// PasswordReset maneja POST /auth/password/reset. La igualdad de password y
// confirm_password se valida aca, en el borde; el workflow no la conoce.
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var req struct {
		VerificationToken string `json:"verification_token" binding:"required"`
		Password          string `json:"password" binding:"required"`
		ConfirmPassword   string `json:"confirm_password" binding:"required,eqfield=Password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password reset request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.passwordReset.Reset(c.Request.Context(), req.VerificationToken, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": metadata("Password reset successful")})
}

// EmailVerifyStart maneja POST /auth/email-verify/start.
func (h *AuthHandler) EmailVerifyStart(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid email verify start request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	verificationToken, err := h.emailVerify.Start(c.Request.Context(), req.Email)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metadata":           metadata("Verification email sent"),
		"verification_token": verificationToken,
	})
}

// EmailVerifyFinish maneja POST /auth/email-verify/finish. El campo code se
// acepta por compatibilidad de wire pero no participa de la verificacion.
func (h *AuthHandler) EmailVerifyFinish(c *gin.Context) {
	var req struct {
		VerificationToken string `json:"verification_token" binding:"required"`
		Code              string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid email verify finish request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.emailVerify.Finish(c.Request.Context(), req.VerificationToken); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metadata": metadata("Email verification successful")})
}

// Me maneja GET /me detras del middleware de autenticacion.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       claims.Subject,
		"username": claims.Username,
		"email":    claims.Email,
	})
}

func metadata(message string) gin.H {
	return gin.H{"status": "success", "code": "0", "message": message}
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case domain.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.KindInvalidArgument:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

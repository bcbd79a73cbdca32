package domain

import "time"

// PendingRegistration es un registro "fantasma": un intento de registro aun
// sin confirmar. Solo ancla el subject del register_token y queda enlazado al
// User resultante para auditoria; nunca se consulta para autorizar nada.
type PendingRegistration struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	VerificationCode string    `json:"-"`
	LinkedUserID     string    `json:"linked_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

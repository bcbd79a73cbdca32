package domain

import "errors"

// Kind clasifica errores de los workflows en categorias gruesas; los callers
// deciden por Kind, nunca por texto.
type Kind int

const (
	KindConflict Kind = iota + 1
	KindUnauthenticated
	KindNotFound
	KindInvalidArgument
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E construye un error de workflow con su Kind.
func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// KindOf devuelve el Kind de un error, o KindInternal si no lo tiene.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

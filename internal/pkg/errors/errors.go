package errors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalid             = errors.New("invalid")
	ErrConflict            = errors.New("conflict")
	ErrInternal            = errors.New("internal")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrDecryption          = errors.New("decryption failed")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrEmbedderUnavailable = errors.New("embedder unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDecryption(err error) bool {
	return errors.Is(err, ErrDecryption)
}

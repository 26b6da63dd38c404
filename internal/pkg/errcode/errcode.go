package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrInternal
	ErrQuotaExceeded
	ErrDecryption
	ErrDimensionMismatch
	ErrEmbedderUnavailable
)

package storage

import "errors"

// ErrInvalidKey is returned for an empty native id or key.
var ErrInvalidKey = errors.New("storage: native id and key must not be empty")

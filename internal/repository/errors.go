package repository

import "errors"

// ErrUnsupportedScheme is returned by Open for a database URL it cannot serve.
var ErrUnsupportedScheme = errors.New("unsupported database scheme")

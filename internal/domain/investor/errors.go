package investor

import "errors"

// ErrInvalidCatalog is returned when profile or power-up tables are unusable.
var ErrInvalidCatalog = errors.New("invalid investor catalog")

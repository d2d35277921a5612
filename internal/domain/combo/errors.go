package combo

import "errors"

// ErrInvalidConfig marks a combo configuration Validate rejects.
var ErrInvalidConfig = errors.New("invalid combo config")

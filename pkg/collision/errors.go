package collision

import "errors"

// ErrConfigInvalid is returned by Config.Validate when a threshold is out
// of range. Callers are expected to treat it as fatal at startup rather
// than retry.
var ErrConfigInvalid = errors.New("collision: invalid configuration")

package storage

import "errors"

// ErrNotFound reports a lookup or update against an id that does not
// exist. Callers map it to an explicit not-found condition.
var ErrNotFound = errors.New("not found")

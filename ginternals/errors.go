package ginternals

import "errors"

// ErrObjectNotFound is an error corresponding to a git object not being
// found
var ErrObjectNotFound = errors.New("object not found")

// ErrOidPrefixAmbiguous is returned when an abbreviated oid prefix
// matches more than one object
var ErrOidPrefixAmbiguous = errors.New("ambiguous object prefix")

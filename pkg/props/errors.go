package props

import "errors"

var (
	ErrWrongType = errors.New("props: property has the wrong type")
	ErrMissing   = errors.New("props: missing property")
)

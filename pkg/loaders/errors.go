package loaders

import "errors"

var (
	ErrEmptyImage         = errors.New("loaders: image has no pixels")
	ErrSyntax             = errors.New("loaders: syntax error")
	ErrInvalidParameter   = errors.New("loaders: invalid parameter")
	ErrUndefinedReference = errors.New("loaders: undefined reference")
	ErrNoMaterial         = errors.New("loaders: no material defined")
	ErrInvalidPath        = errors.New("loaders: invalid file path")
	ErrUnsupportedFormat  = errors.New("loaders: unsupported image format")
)

package texture

import "errors"

var (
	ErrInvalidOption = errors.New("texture: invalid option")
)

package material

import "errors"

var (
	ErrEtaAndSpecular      = errors.New("material: eta and specular are mutually exclusive")
	ErrInvalidSamplingRate = errors.New("material: sampling rate must be positive")
	ErrInvalidParameter    = errors.New("material: invalid parameter")
	ErrUnknownPlugin       = errors.New("material: unknown plugin")
	ErrUnknownParameter    = errors.New("material: unknown parameter")
	ErrParameterType       = errors.New("material: parameter has the wrong type")
)

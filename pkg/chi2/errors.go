package chi2

import "errors"

var (
	ErrInvalidConfig    = errors.New("chi2: invalid configuration")
	ErrInvalidIncidence = errors.New("chi2: incident direction lies in the tangent plane")
	ErrInsufficientData = errors.New("chi2: not enough data for the test")
	ErrZeroPDFRegion    = errors.New("chi2: samples found in a region of zero density")
)

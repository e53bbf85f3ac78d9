package types

import "errors"

var (
	ErrUnsupportedDerivative  = errors.New("unsupported derivative order")
	ErrUnsupportedOperation   = errors.New("unsupported operation")
	ErrSizeMismatch           = errors.New("size mismatch")
	ErrInvalidKernelParameter = errors.New("invalid kernel parameter")
)

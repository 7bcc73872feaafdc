package core

import "errors"

var (
	ErrInvalidRange     = errors.New("range high must be greater than range low")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidSide      = errors.New("side must be buy or sell")
	ErrNegativeQuantity = errors.New("remaining quantity would become negative")
	ErrFeedClosed       = errors.New("price feed closed")
)

package card

import "errors"

var (
	ErrInvalidAmount = errors.New("card amount must be greater than zero")
	ErrIssuer        = errors.New("card issuer error")
)

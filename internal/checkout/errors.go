package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to check out")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
)

package models

import "errors"

var (
	// ErrBasketNotFound is returned when a basket id is unknown to the store.
	ErrBasketNotFound = errors.New("basket not found")

	// ErrBasketExited is returned when exiting a basket whose stocks are all exited.
	ErrBasketExited = errors.New("basket already exited")

	// ErrInvalidBasket is returned for baskets that fail validation.
	ErrInvalidBasket = errors.New("invalid basket")

	// ErrPriceUnavailable is returned when no usable live price exists for a symbol.
	ErrPriceUnavailable = errors.New("price unavailable")
)

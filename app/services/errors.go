package services

import "errors"

var (
	// ErrOutOfStock is returned when a purchase asks for more units than
	// the product has unsold.
	ErrOutOfStock = errors.New("not enough items in stock")

	// ErrInsufficientFunds is returned when the user's balance does not
	// cover the cart total.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrEmptyCart is returned when checking out an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidCredentials is returned on a failed operator login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden marks a delivery the recipient rejected (bot blocked or
	// chat deleted). Only this unsubscribes the user; other send failures
	// are transient and the user stays a receiver.
	ErrForbidden = errors.New("recipient refuses messages")
)

package store

import "errors"

// Sentinel errors for business-rule failures. Handlers map these to 4xx
// responses; anything else is a 500.
var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("not enough stock")
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrPromoNotFound       = errors.New("promo code not found")
	ErrPromoInactive       = errors.New("promo code is not active")
	ErrPromoOutsideWindow  = errors.New("promo code is not valid at this time")
	ErrPromoExhausted      = errors.New("promo code usage limit reached")
	ErrPromoMinAmount      = errors.New("order amount below promo code minimum")
	ErrPromoAlreadyUsed    = errors.New("promo code already used by this user")
	ErrPromoAlreadyApplied = errors.New("order already has a promo code")

	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("illegal order status transition")
)

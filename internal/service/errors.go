package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

// kindError carries a caller-facing message and unwraps to one of the
// categories above.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

var (
	ErrInvalidShippingTarget = &kindError{"shipping address not found", ErrNotFound}
	ErrCartItemNotFound      = &kindError{"cart item not found", ErrNotFound}
	ErrVariantNotFound       = &kindError{"product variant not found", ErrNotFound}
	ErrOrderNotFound         = &kindError{"order not found", ErrNotFound}

	ErrEmptySelection     = &kindError{"no cart items selected for checkout", ErrValidation}
	ErrProductUnavailable = &kindError{"product is not available for purchase", ErrValidation}
	ErrInsufficientStock  = &kindError{"not enough stock", ErrValidation}
	ErrInvalidQuantity    = &kindError{"quantity must be at least 1", ErrValidation}
	ErrInvalidPayment     = &kindError{"unsupported payment method", ErrValidation}

	ErrRetryableConflict = &kindError{"conflicting update, please retry", ErrConflict}
	ErrIllegalTransition = &kindError{"order status transition not allowed", ErrConflict}
	ErrDiscountExists    = &kindError{"discount code already exists", ErrConflict}
)

// ProductError names the product a line-level failure applies to. Retryable
// is set when the failure came from a concurrent checkout.
type ProductError struct {
	Product   string
	Err       error
	Retryable bool
}

func (e *ProductError) Error() string {
	if e.Product == "" {
		return fmt.Sprintf("a cart item is no longer available: %v", e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Product)
}

func (e *ProductError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

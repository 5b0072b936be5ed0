package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedProduct is matched by every *MalformedProductError.
var ErrMalformedProduct = errors.New("malformed product")

// MalformedReason names the field that made a remote product unusable.
type MalformedReason string

const (
	ReasonNoImages MalformedReason = "no_images"
	ReasonNoPrice  MalformedReason = "no_unit_amount"
)

// MalformedProductError reports a remote product that cannot be projected
// under the fail policy.
type MalformedProductError struct {
	ProductID string
	Reason    MalformedReason
}

func (e *MalformedProductError) Error() string {
	return fmt.Sprintf("malformed product %s: %s", e.ProductID, e.Reason)
}

func (e *MalformedProductError) Is(target error) bool {
	return target == ErrMalformedProduct
}

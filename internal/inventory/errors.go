package inventory

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity rejects consume calls whose requested quantity is
// zero or negative. Raised before any lot is read.
var ErrInvalidQuantity = errors.New("quantity needed must be positive")

// NotFoundError reports that an ingredient id does not resolve in the
// catalog. Raised before any lot is read.
type NotFoundError struct {
	IngredientID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ingredient %d not found", e.IngredientID)
}

// ConcurrencyError reports that the lots of an ingredient could not be
// claimed for exclusive use. The in-process lock used with the SQLite
// build blocks instead of failing, so this surfaces only on storage
// backends that detect write conflicts themselves.
type ConcurrencyError struct {
	IngredientID uint
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent consumption in progress for ingredient %d", e.IngredientID)
}

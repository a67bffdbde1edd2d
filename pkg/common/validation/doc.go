/*
Package validation provides shared parameter validation for gatekeep
components.

The helpers return *errors.ValidationError values so that all constructor
failures across the library carry the same shape and wrap
errors.ErrInvalidConfiguration:

	if err := validation.ValidatePositive("tokenbucket", "capacity", capacity); err != nil {
		return nil, err
	}
*/
package validation

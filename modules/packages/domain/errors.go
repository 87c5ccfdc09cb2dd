package domain

import "errors"

var (
	ErrPackageNotFound    = errors.New("package not found")
	ErrNameInvalid        = errors.New("package name must be between 3 and 100 characters")
	ErrDescriptionTooLong = errors.New("package description must be at most 2000 characters")
	ErrPriceInvalid       = errors.New("monthly price must be greater than zero")
	ErrYearlyPriceInvalid = errors.New("yearly price must be greater than zero and in the package currency")
	ErrFeaturesInvalid    = errors.New("features must be a JSON object")
	ErrPromoCodeInvalid   = errors.New("promo code must be 3 to 20 letters or digits")
	ErrProgramsNotOwned   = errors.New("every program must belong to the package trainer")
	ErrNotOwner           = errors.New("package belongs to another trainer")
	ErrTrainerRequired    = errors.New("a trainer profile is required")
)

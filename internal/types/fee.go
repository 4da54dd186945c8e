package types

import (
	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/samber/lo"
)

// FeeOwnerType identifies what a fee definition is billed against
type FeeOwnerType string

const (
	FeeOwnerTypeUnit     FeeOwnerType = "unit"
	FeeOwnerTypeBuilding FeeOwnerType = "building"
)

func (t FeeOwnerType) String() string {
	return string(t)
}

func (t FeeOwnerType) Validate() error {
	allowed := []FeeOwnerType{
		FeeOwnerTypeUnit,
		FeeOwnerTypeBuilding,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid fee owner type").
			WithHint("Please provide a valid fee owner type").
			WithReportableDetails(map[string]any{
				"allowed":  allowed,
				"provided": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

package jobcards

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
)

// Request DTOs parsed and validated once at the HTTP boundary; the
// service only ever receives already-validated values.

type createRequest struct {
	Description      string `json:"description" validate:"required"`
	VehicleID        int64  `json:"vehicle_id" validate:"required,gt=0"`
	DriverID         *int64 `json:"driver_id" validate:"omitempty,gt=0"`
	ServiceAdvisorID *int64 `json:"service_advisor_id" validate:"omitempty,gt=0"`
}

type assignRequest struct {
	MechanicID int64 `json:"mechanic_id" validate:"required,gt=0"`
}

type completeRequest struct {
	LaborCost string `json:"labor_cost" validate:"required"`
}

type resolveFinanceRequest struct {
	NewStatus          string `json:"new_status" validate:"required"`
	CancellationReason string `json:"cancellation_reason"`
}

func (req completeRequest) laborCostCents() (int64, error) {
	cents, err := shared.ParseCents(req.LaborCost)
	if err != nil {
		return 0, err
	}
	if cents < 0 {
		return 0, ErrNegativeLaborCost
	}
	return cents, nil
}

func validateStruct(v *validator.Validate, req any) error {
	if err := v.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return fmt.Errorf("field %s is missing or invalid", fieldErrs[0].Field())
		}
		return err
	}
	return nil
}

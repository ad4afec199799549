// Package customer holds the customer form rules: every field is required
// and the division must belong to the chosen country.
package customer

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/schedule"
)

// Input is a customer as entered on the form. A zero ID creates a new
// customer.
type Input struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	CountryID  int64  `json:"country_id" validate:"required,gt=0"`
	DivisionID int64  `json:"division_id" validate:"required,gt=0"`
}

// DivisionError rejects a division that is unknown or lies in another
// country.
type DivisionError struct {
	DivisionID int64
	CountryID  int64
}

func (e *DivisionError) Error() string {
	return fmt.Sprintf("division %d is not in country %d", e.DivisionID, e.CountryID)
}

type Rules struct {
	check *validator.Validate
}

func NewRules() *Rules {
	return &Rules{check: schedule.NewFieldCheck()}
}

// Check validates in against the divisions of its country and returns the
// record to store. A missing field is reported as *schedule.EmptyFieldError.
func (r *Rules) Check(in Input, divisions []model.Division) (model.Customer, error) {
	if err := schedule.CheckFields(r.check, in, "customer"); err != nil {
		return model.Customer{}, err
	}
	for _, d := range divisions {
		if d.ID != in.DivisionID {
			continue
		}
		if d.CountryID != in.CountryID {
			break
		}
		return model.Customer{
			ID:         in.ID,
			Name:       in.Name,
			Address:    in.Address,
			PostalCode: in.PostalCode,
			Phone:      in.Phone,
			DivisionID: d.ID,
			Division:   d.Name,
			CountryID:  d.CountryID,
		}, nil
	}
	return model.Customer{}, &DivisionError{DivisionID: in.DivisionID, CountryID: in.CountryID}
}

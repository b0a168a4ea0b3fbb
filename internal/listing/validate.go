package listing

import (
	"errors"
	"fmt"

	"jobmate/listings-service/internal/validation"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("job not found")

// NotFoundError is returned when an operation names a job id the store
// does not hold.
type NotFoundError struct{ ID int }

func (e *NotFoundError) Error() string { return fmt.Sprintf("job %d not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Validate applies the job form rules: the five descriptive fields are
// required and a logo, when given, must be an http(s) URL.
func (f JobFields) Validate() error {
	errs := validation.Required(map[string]string{
		"company":     f.Company,
		"position":    f.Position,
		"contract":    f.Contract,
		"location":    f.Location,
		"description": f.Description,
	})
	if msg, ok := validation.URL(f.Logo); !ok {
		errs["logo"] = "logo " + msg
	}
	return validation.New(errs)
}

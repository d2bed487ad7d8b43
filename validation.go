package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ValidationError converts ozzo validation errors into ErrValidationFailed
// with one entry per failing field. Other errors are reported under "_".
func ValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			if ferr != nil {
				fields[field] = ferr.Error()
			}
		}
		return ErrValidationFailed.WithFields(fields)
	}

	var ierr validation.InternalError
	if errors.As(err, &ierr) {
		return ErrInternal.WithMessage("validation could not run").Wrap(err)
	}

	return ErrValidationFailed.WithFields(map[string]string{"_": err.Error()})
}

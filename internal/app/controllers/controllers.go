// Package controllers contains the HTTP handlers that translate requests
// into service calls and service results into API responses.
package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/oguzd/campusreg/internal/app/models/dto"
)

// bindErrorDetail converts a request binding failure into an ErrorDetail,
// preserving per-field messages when the failure came from binding tags.
func bindErrorDetail(err error, message string) *dto.ErrorDetail {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return dto.HandleValidationError(validationErrs)
	}

	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message).WithDetails(err.Error())
}

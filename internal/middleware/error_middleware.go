package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oguzd/campusreg/internal/app/models/dto"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Enrollment
// rejections are expected outcomes and map to their contract status codes;
// consistency faults and unknown errors map to 500 and are logged.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEnrollment):
		c.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeDuplicateEnrollment, "Student is already enrolled in this offering"),
		})
	case errors.Is(err, apperrors.ErrSeatsExhausted):
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeSeatsExhausted, "No seats remaining in this offering"),
		})
	case errors.Is(err, apperrors.ErrCreditCapExceeded):
		c.JSON(http.StatusRequestEntityTooLarge, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeCreditCapExceeded, "Enrollment would reach or exceed the semester credit cap"),
		})
	case errors.Is(err, apperrors.ErrTimeConflict):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeTimeConflict, "Offering conflicts with the student's schedule"),
		})
	case errors.Is(err, apperrors.ErrNotEnrolled):
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeNotEnrolled, "Student is not enrolled in this offering"),
		})
	case errors.Is(err, apperrors.ErrOfferingNotFound):
		c.JSON(http.StatusNotFound, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Offering not found"),
		})
	case errors.Is(err, apperrors.ErrOfferingAlreadyExists):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Offering for this subject and semester already exists"),
		})
	case errors.Is(err, apperrors.ErrOfferingHasEnrollments):
		c.JSON(http.StatusConflict, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceConflict, "Offering has enrollments and cannot be deleted"),
		})
	case errors.Is(err, apperrors.ErrSeatInconsistency):
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Seat counter consistency fault")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeDataConsistency, "Seat accounting is inconsistent").WithSeverity(dto.ErrorSeverityCritical),
		})
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied"),
		})
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Message != "" {
			detail = detail.WithDetails(customErr.Message)
		}
		c.JSON(http.StatusBadRequest, dto.APIResponse{Error: detail})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}

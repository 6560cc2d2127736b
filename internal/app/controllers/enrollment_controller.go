package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/app/models/dto"
	"github.com/oguzd/campusreg/internal/app/services"
	"github.com/oguzd/campusreg/internal/middleware"
)

// EnrollmentController handles enrollment and withdrawal requests
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

// Enroll handles an enrollment request for the authenticated student
// @Summary Enroll in an offering
// @Description Reserves a seat in the offering if one remains, the student's credit load allows it, and the schedule has no conflict
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Offering to enroll in"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment admitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or duplicate enrollment"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "No seats remaining"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 409 {object} dto.ErrorResponse "Schedule conflict"
// @Failure 413 {object} dto.ErrorResponse "Credit cap exceeded"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	studentID, ok := middleware.CallerID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	var request dto.EnrollRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindErrorDetail(err, "Invalid enrollment request")))
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx, studentID, request.SubjectCode, models.Semester(request.Semester))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromEnrollment(enrollment),
		Timestamp: time.Now(),
	})
}

// Withdraw handles a withdrawal request for the authenticated student
// @Summary Withdraw from an offering
// @Description Removes the student's enrollment and returns the seat
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Param semester query string true "Semester, e.g. 2024-1"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Withdrawal completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student is not enrolled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments/{subjectCode} [delete]
func (c *EnrollmentController) Withdraw(ctx *gin.Context) {
	studentID, ok := middleware.CallerID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	subjectCode := ctx.Param("subjectCode")
	semester := models.Semester(ctx.Query("semester"))

	err := c.enrollmentService.Withdraw(ctx, studentID, subjectCode, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Withdrawal completed"},
		Timestamp: time.Now(),
	})
}

// ListEnrollments lists the authenticated student's enrollments
// @Summary List enrollments
// @Description Lists the student's enrollments for a semester with the committed credit total
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param semester query string true "Semester, e.g. 2024-1"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentListResponse} "Enrollments retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid semester"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	studentID, ok := middleware.CallerID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	semester := models.Semester(ctx.Query("semester"))

	enrollments, totalCredits, err := c.enrollmentService.ListEnrollments(ctx, studentID, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.EnrollmentListResponse{
			Semester:     string(semester),
			TotalCredits: totalCredits,
			Enrollments:  dto.FromEnrollments(enrollments),
		},
		Timestamp: time.Now(),
	})
}

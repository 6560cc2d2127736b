package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/app/models/dto"
	"github.com/oguzd/campusreg/internal/app/repositories"
	"github.com/oguzd/campusreg/internal/app/services"
	"github.com/oguzd/campusreg/internal/middleware"
	"github.com/oguzd/campusreg/internal/pkg/helpers"
)

// OfferingController handles offering catalog requests
type OfferingController struct {
	offeringService *services.OfferingService
}

// NewOfferingController creates a new OfferingController
func NewOfferingController(offeringService *services.OfferingService) *OfferingController {
	return &OfferingController{
		offeringService: offeringService,
	}
}

// CreateOffering publishes a new course offering
// @Summary Create an offering
// @Description Publishes a course offering with its seat capacity and weekly time slots
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOfferingRequest true "Offering to publish"
// @Success 201 {object} dto.APIResponse{data=dto.OfferingResponse} "Offering created"
// @Failure 400 {object} dto.ErrorResponse "Invalid offering"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an instructor"
// @Failure 409 {object} dto.ErrorResponse "Offering already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offerings [post]
func (c *OfferingController) CreateOffering(ctx *gin.Context) {
	var request dto.CreateOfferingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(bindErrorDetail(err, "Invalid offering request")))
		return
	}

	offering := request.ToModel()
	if err := c.offeringService.CreateOffering(ctx, offering); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      dto.FromOffering(offering),
		Timestamp: time.Now(),
	})
}

// GetOffering retrieves a single offering
// @Summary Get an offering
// @Description Retrieves an offering by subject code and semester
// @Tags offerings
// @Accept json
// @Produce json
// @Param subjectCode path string true "Subject code"
// @Param semester query string true "Semester, e.g. 2024-1"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingResponse} "Offering retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offerings/{subjectCode} [get]
func (c *OfferingController) GetOffering(ctx *gin.Context) {
	subjectCode := ctx.Param("subjectCode")
	semester := models.Semester(ctx.Query("semester"))

	offering, err := c.offeringService.GetOffering(ctx, subjectCode, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.FromOffering(offering),
		Timestamp: time.Now(),
	})
}

// ListOfferings lists offerings with optional filters
// @Summary List offerings
// @Description Lists offerings filtered by semester and classification, newest first
// @Tags offerings
// @Accept json
// @Produce json
// @Param semester query string false "Semester filter, e.g. 2024-1"
// @Param classification query string false "Classification filter (MANDATORY or ELECTIVE)"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.OfferingListResponse} "Offerings retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offerings [get]
func (c *OfferingController) ListOfferings(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	filter := repositories.OfferingFilter{
		Semester:       models.Semester(ctx.Query("semester")),
		Classification: models.Classification(ctx.Query("classification")),
		Offset:         offset,
		Limit:          limit,
	}

	offerings, total, err := c.offeringService.ListOfferings(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.OfferingListResponse{
			Offerings:  dto.FromOfferings(offerings),
			Pagination: helpers.NewPaginationInfo(total, page, size),
		},
		Timestamp: time.Now(),
	})
}

// DeleteOffering removes an offering that has no enrollments
// @Summary Delete an offering
// @Description Removes an offering; fails if any student is still enrolled
// @Tags offerings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectCode path string true "Subject code"
// @Param semester query string true "Semester, e.g. 2024-1"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Offering deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an instructor"
// @Failure 404 {object} dto.ErrorResponse "Offering not found"
// @Failure 409 {object} dto.ErrorResponse "Offering still has enrollments"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offerings/{subjectCode} [delete]
func (c *OfferingController) DeleteOffering(ctx *gin.Context) {
	subjectCode := ctx.Param("subjectCode")
	semester := models.Semester(ctx.Query("semester"))

	if err := c.offeringService.DeleteOffering(ctx, subjectCode, semester); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      dto.SuccessResponse{Message: "Offering deleted"},
		Timestamp: time.Now(),
	})
}

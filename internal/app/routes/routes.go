package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/oguzd/campusreg/internal/app/controllers"
	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/app/models/dto"
	"github.com/oguzd/campusreg/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	offeringController *controllers.OfferingController,
	enrollmentController *controllers.EnrollmentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public catalog routes ---
	offerings := v1.Group("/offerings")
	{
		offerings.GET("", offeringController.ListOfferings)
		offerings.GET("/:subjectCode", offeringController.GetOffering)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Enrollment routes are restricted to students
		enrollments := authenticated.Group("/enrollments")
		enrollments.Use(authMiddleware.RoleRequired(string(models.RoleStudent)))
		{
			enrollments.GET("", enrollmentController.ListEnrollments)
			enrollments.POST("", enrollmentController.Enroll)
			enrollments.DELETE("/:subjectCode", enrollmentController.Withdraw)
		}

		// Catalog management is restricted to instructors
		offeringsProtected := authenticated.Group("/offerings")
		offeringsProtected.Use(authMiddleware.RoleRequired(string(models.RoleInstructor)))
		{
			offeringsProtected.POST("", offeringController.CreateOffering)
			offeringsProtected.DELETE("/:subjectCode", offeringController.DeleteOffering)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}

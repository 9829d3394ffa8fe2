package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/dcruz/schoolgate/internal/app/controllers"
	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	admissionController *controllers.AdmissionController,
	studentController *controllers.StudentController,
	userController *controllers.UserController,
	roleController *controllers.RoleController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	// Applicants submit without an account
	v1.POST("/applications", admissionController.Apply)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
		auth.POST("/logout", authController.Logout)
	}

	// --- Authenticated staff routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/profile", authController.Profile)

	admin := authenticated.Group("/admin")
	{
		applications := admin.Group("/applications")
		{
			applications.GET("", authMiddleware.PermissionRequired(models.PermViewApplications), admissionController.List)
			applications.GET("/:id", authMiddleware.PermissionRequired(models.PermViewApplications), admissionController.Get)
			applications.POST("", authMiddleware.PermissionRequired(models.PermManageApplications), admissionController.Create)
			applications.PUT("/:id", authMiddleware.PermissionRequired(models.PermManageApplications), admissionController.Amend)
			applications.DELETE("/:id", authMiddleware.PermissionRequired(models.PermManageApplications), admissionController.Delete)
		}

		students := admin.Group("/students")
		{
			students.GET("", authMiddleware.PermissionRequired(models.PermViewStudents), studentController.List)
			students.GET("/:id", authMiddleware.PermissionRequired(models.PermViewStudents), studentController.Get)
			students.PUT("/:id/number", authMiddleware.PermissionRequired(models.PermManageStudents), studentController.AssignNumber)
		}

		users := admin.Group("/users")
		{
			users.GET("", authMiddleware.PermissionRequired(models.PermViewUsers), userController.List)
			users.GET("/:id", authMiddleware.PermissionRequired(models.PermViewUsers), userController.Get)
			users.POST("", authMiddleware.PermissionRequired(models.PermManageUsers), userController.Create)
			users.PUT("/:id", authMiddleware.PermissionRequired(models.PermManageUsers), userController.Update)
			users.DELETE("/:id", authMiddleware.PermissionRequired(models.PermManageUsers), userController.Delete)
		}

		roles := admin.Group("/roles")
		{
			roles.GET("", authMiddleware.PermissionRequired(models.PermViewRoles), roleController.List)
			roles.GET("/:id", authMiddleware.PermissionRequired(models.PermViewRoles), roleController.Get)
			roles.POST("", authMiddleware.PermissionRequired(models.PermManageRoles), roleController.Create)
			roles.PUT("/:id", authMiddleware.PermissionRequired(models.PermManageRoles), roleController.Update)
			roles.DELETE("/:id", authMiddleware.PermissionRequired(models.PermManageRoles), roleController.Delete)
		}

		admin.GET("/permissions", authMiddleware.PermissionRequired(models.PermViewRoles), roleController.ListPermissions)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})
}

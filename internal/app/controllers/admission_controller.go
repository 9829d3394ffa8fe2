package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/services"
	"github.com/dcruz/schoolgate/internal/middleware"
	"github.com/dcruz/schoolgate/internal/pkg/helpers"
)

// AdmissionController handles enrollment application operations
type AdmissionController struct {
	admissionService *services.AdmissionService
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService *services.AdmissionService) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
	}
}

// fileOrNil reads one named file slot from the multipart form, nil when the
// slot was not submitted.
func fileOrNil(ctx *gin.Context, name string) *multipart.FileHeader {
	fh, err := ctx.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}

func documentUploads(ctx *gin.Context) services.DocumentUploads {
	return services.DocumentUploads{
		CertificateOfEnrollment: fileOrNil(ctx, "certificateOfEnrollment"),
		BirthCertificate:        fileOrNil(ctx, "birthCertificate"),
		ReportCardFront:         fileOrNil(ctx, "reportCardFront"),
		ReportCardBack:          fileOrNil(ctx, "reportCardBack"),
	}
}

// Apply handles a public enrollment application submission
// @Summary Submit an enrollment application
// @Description Submits a new enrollment application with personal data, family background, educational history and document uploads
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Param email formData string true "Applicant email"
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param schoolYear formData string true "School year (YYYY-YYYY)"
// @Param yearLevel formData string true "Year level, e.g. Grade 7"
// @Param siblings formData string false "JSON-encoded sibling list"
// @Param schools formData string false "JSON-encoded prior-school list"
// @Param certificateOfEnrollment formData file false "Certificate of enrollment"
// @Param birthCertificate formData file false "Birth certificate"
// @Param reportCardFront formData file false "Report card (front)"
// @Param reportCardBack formData file false "Report card (back)"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 409 {object} dto.ErrorResponse "Application number already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications [post]
func (c *AdmissionController) Apply(ctx *gin.Context) {
	var req dto.ApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	// Public applicants never set numbers or statuses by hand
	req.ApplicationNumber = ""
	req.Status = ""

	app, err := c.admissionService.Submit(ctx.Request.Context(), &req, documentUploads(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ApplicationResponse{
			ID:                app.ID,
			ApplicationNumber: app.ApplicationNumber,
			Status:            string(app.Status),
		},
		Timestamp: time.Now(),
	})
}

// Create handles a staff-entered application, which may carry a manual
// application number and an initial status
// @Summary Create an application (staff)
// @Description Creates an application on behalf of an onsite applicant, optionally with a manual application number
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Application number already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/applications [post]
func (c *AdmissionController) Create(ctx *gin.Context) {
	var req dto.ApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.admissionService.Submit(ctx.Request.Context(), &req, documentUploads(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ApplicationResponse{
			ID:                app.ID,
			ApplicationNumber: app.ApplicationNumber,
			Status:            string(app.Status),
		},
		Timestamp: time.Now(),
	})
}

// Amend rewrites an existing application from a full payload
// @Summary Amend an application
// @Description Rewrites an existing application and its owned records; a status change to Enrolled promotes the applicant to a student
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application number already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/applications/{id} [put]
func (c *AdmissionController) Amend(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")
		errorDetail = errorDetail.WithDetails("Application ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.ApplicationRequest
	if err := ctx.ShouldBind(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application data")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.admissionService.Amend(ctx.Request.Context(), id, &req, documentUploads(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.ApplicationResponse{
			ID:                app.ID,
			ApplicationNumber: app.ApplicationNumber,
			Status:            string(app.Status),
		},
		Timestamp: time.Now(),
	})
}

// Get retrieves one application with its related records
// @Summary Get application by ID
// @Description Retrieves an application with the applicant, prior schools and documents
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/applications/{id} [get]
func (c *AdmissionController) Get(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")
		errorDetail = errorDetail.WithDetails("Application ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.admissionService.GetApplication(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      app,
		Timestamp: time.Now(),
	})
}

// List retrieves a filtered page of applications
// @Summary List applications
// @Description Retrieves applications filtered by status, category and school year
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param category query string false "Category filter (LES/JHS/SHS)"
// @Param schoolYear query string false "School year filter"
// @Param page query int false "Page number (0-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Applications retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/applications [get]
func (c *AdmissionController) List(ctx *gin.Context) {
	var filter dto.ApplicationFilter
	_ = ctx.ShouldBindQuery(&filter)

	page, size := helpers.GetPaginationParams(ctx)

	apps, total, err := c.admissionService.ListApplications(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.PagedResponse{
			Items:      apps,
			Pagination: helpers.NewPaginationInfo(page, size, total),
		},
		Timestamp: time.Now(),
	})
}

// Delete removes an application
// @Summary Delete an application
// @Description Deletes an application and everything it owns
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 204 "Application deleted successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid application ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/applications/{id} [delete]
func (c *AdmissionController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid application ID")
		errorDetail = errorDetail.WithDetails("Application ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.admissionService.DeleteApplication(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusNoContent, dto.APIResponse{
		Timestamp: time.Now(),
	})
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/helpers"
)

// maxAvatarUpload caps the multipart avatar body
const maxAvatarUpload = 8 << 20

// UserController handles profile and admin user operations
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile retrieves the profile of the authenticated user
// @Summary Get own profile
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User} "Profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetProfile(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: user})
}

// UpdateProfile edits the caller's own profile
// @Summary Update own profile
// @Description Full name, phone, language and notification preferences. Role and email are not editable.
// @Tags me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.User} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /me [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{Data: user})
}

// UploadAvatar stores a new profile picture
// @Summary Upload profile picture
// @Tags me
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.AvatarResponse} "Avatar stored"
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Router /me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxAvatarUpload)
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Avatar upload without file")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Image file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded avatar")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Could not read uploaded file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	defer file.Close()

	user, err := c.userService.UploadAvatar(ctx.Request.Context(), p, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var url string
	if user.ProfilePictureURL != nil {
		url = *user.ProfilePictureURL
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.AvatarResponse{ProfilePictureURL: url}})
}

// Navigation lists the pages available to the caller's role
// @Summary Navigation entries for the current role
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NavigationResponse}
// @Router /me/navigation [get]
func (c *UserController) Navigation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: c.userService.Navigation(p)})
}

// Directory godoc
// @Summary List students or coaches
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string true "student or coach"
// @Success 200 {object} dto.APIResponse{data=[]models.UserSummary}
// @Failure 403 {object} dto.ErrorResponse "Staff, coaches and admins only"
// @Router /directory [get]
func (c *UserController) Directory(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var q dto.DirectoryQuery
	if !bindQuery(ctx, c.logger, &q) {
		return
	}

	people, err := c.userService.Directory(ctx.Request.Context(), p, models.Role(q.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, people)
}

// ListUsers lists accounts for admins
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]models.User}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var filter dto.UserFilterRequest
	if !bindQuery(ctx, c.logger, &filter) {
		return
	}

	users, total, err := c.userService.ListUsers(ctx.Request.Context(), p, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewPagedResponse(users, helpers.NewPaginationInfo(total, filter.Page, filter.PageSize)))
}

// GetUser retrieves one account
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "User")
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: user})
}

// CreateUser provisions an account with a role
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Account"
// @Success 201 {object} dto.APIResponse{data=models.User}
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("userID", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("User created by admin")
	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: user})
}

// UpdateRole changes an account's role
// @Summary Change user role
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.UpdateRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Router /users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "User")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if !bindJSON(ctx, c.logger, &req) {
		return
	}

	user, err := c.userService.UpdateRole(ctx.Request.Context(), p, id, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: user})
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse "Admins and self cannot be deleted"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id", "User")
	if !ok {
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

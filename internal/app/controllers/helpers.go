// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/academy/internal/app/auth"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/middleware"
)

// principal returns the authenticated caller or answers 401
func principal(ctx *gin.Context) (appauth.Principal, bool) {
	p, ok := middleware.Principal(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "User not authenticated")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return appauth.Principal{}, false
	}
	return p, true
}

// uuidParam parses a path parameter as a UUID or answers 400
func uuidParam(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label+" ID").
			WithField(name).
			WithDetails(label + " ID must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional query value; empty means nil
func optionalUUID(ctx *gin.Context, raw, field string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+field).WithField(field)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &id, true
}

// bindJSON binds the body into req or answers 400 with the validation details
func bindJSON(ctx *gin.Context, logger zerolog.Logger, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Invalid request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// bindQuery binds query parameters into req or answers 400
func bindQuery(ctx *gin.Context, logger zerolog.Logger, req interface{}) bool {
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Invalid query parameters")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

func respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.NewDataResponse(data))
}

package util

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/config"
	"github.com/fadilmartias/jobmarket/internal/logger"
	"github.com/fadilmartias/jobmarket/internal/response"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	ErrorCode  string
	Kind       string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Kind       string `json:"kind,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// SuccessResponse sends the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	res := OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	}
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(res)
}

// ErrorResponse sends the standard error envelope. Outside production the
// first error and a stack trace are attached for debugging.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	res := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
		Code:    params.ErrorCode,
		Kind:    params.Kind,
		Details: params.Details,
	}
	if !config.LoadAppConfig().IsProduction() {
		if len(errs) > 0 && errs[0] != nil {
			res.DevMessage = errs[0].Error()
			if params.Code >= fiber.StatusInternalServerError || params.Code == 0 {
				res.Trace = string(debug.Stack())
			}
		}
		if params.DevMessage != "" {
			res.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			res.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if params.Code == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(res)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindStateViolation:
		return fiber.StatusUnprocessableEntity
	case apperr.KindAuthorization:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// AppErrorResponse renders err with the status and structure of its kind.
// Errors that are not *apperr.Error are logged and reported as 500.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		logger.Logger.Errorw("Request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return ErrorResponse(c, ErrorResponseFormat{
			Code:      fiber.StatusInternalServerError,
			Message:   "internal server error",
			ErrorCode: string(apperr.CodeInternal),
			Kind:      string(apperr.KindInternal),
		}, err)
	}
	return ErrorResponse(c, ErrorResponseFormat{
		Code:      StatusFor(e.Kind),
		Message:   e.Message,
		ErrorCode: string(e.Code),
		Kind:      string(e.Kind),
		Details:   e,
	})
}

package server

import (
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"parceldash/internal/session"
	"parceldash/internal/types"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Warning marks errors the dashboard shows inline; the session is
	// still usable.
	Warning bool `json:"warning,omitempty"`
	Data    any  `json:"data,omitempty"`
}

// ListResponse wraps a page of rows.
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
}

func SuccessResponse(c *app.RequestContext, data any) {
	c.JSON(consts.StatusOK, Response{Code: "SUCCESS", Message: "operation successful", Data: data})
}

func CreatedResponse(c *app.RequestContext, data any) {
	c.JSON(consts.StatusCreated, Response{Code: "CREATED", Message: "resource created successfully", Data: data})
}

func NoContentResponse(c *app.RequestContext) {
	c.Status(consts.StatusNoContent)
}

func BadRequestResponse(c *app.RequestContext, message string) {
	c.JSON(consts.StatusBadRequest, Response{Code: "BAD_REQUEST", Message: message})
}

// ErrorResponse maps domain errors to status codes. Anything else is an
// internal error and its detail is not exposed.
func ErrorResponse(c *app.RequestContext, err error) {
	status := consts.StatusInternalServerError
	switch {
	case types.IsSchemaMismatch(err):
		status = consts.StatusUnprocessableEntity
	case types.IsUnknownVariant(err), types.IsInvalidParameter(err), errors.Is(err, session.ErrSelectionRequired):
		status = consts.StatusBadRequest
	}

	var derr *types.Error
	if status == consts.StatusInternalServerError || !errors.As(err, &derr) {
		c.JSON(consts.StatusInternalServerError, Response{Code: "INTERNAL_ERROR", Message: "internal server error"})
		return
	}
	c.JSON(status, Response{Code: derr.Code, Message: derr.UserMessage(), Warning: true})
}

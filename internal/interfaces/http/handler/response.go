package handler

import "github.com/erp/invoicing/internal/interfaces/http/dto"

// The handlers write dto.Response. The typed envelopes below only give swag a
// concrete schema for the data field of each endpoint.

// APIResponse is a single-object envelope.
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ListResponse is a paginated envelope; meta echoes the effective skip and limit.
type ListResponse[T any] struct {
	Success bool     `json:"success" example:"true"`
	Data    []T      `json:"data"`
	Meta    dto.Meta `json:"meta"`
}

// ErrorResponse is the envelope of every non-2xx answer.
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   dto.ErrorInfo `json:"error"`
}

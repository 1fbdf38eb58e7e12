// Package response provides the JSON response shapes of the HTTP API.
//
// Successful responses are OpenAI-style envelopes tagged with an "object"
// field. Errors are written as {"error": message, "detail": cause} with the
// numeric errno code carried in the X-Error-Code header.
package response

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sentinel-embed/pkg/utils/errors"
)

// HeaderErrorCode carries the errno code of an error response.
const HeaderErrorCode = "X-Error-Code"

// Object types of the response envelopes.
const (
	ObjectList          = "list"
	ObjectStatus        = "status"
	ObjectChunks        = "chunks"
	ObjectOptimizedText = "optimized_text"
	ObjectCollection    = "collection"
)

// ErrorBody is the body of every error response.
type ErrorBody struct {
	// Error is a human-readable message
	Error string `json:"error"`

	// Detail is the underlying cause, if any
	Detail string `json:"detail,omitempty"`
}

// ListResponse is the {"object":"list","data":[...]} envelope.
type ListResponse struct {
	Object string      `json:"object"`
	Data   interface{} `json:"data"`
	Model  string      `json:"model,omitempty"`
	Usage  *Usage      `json:"usage,omitempty"`
}

// Usage reports the number of words consumed by an embedding request.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// StatusResponse is the {"object":"status","message":...} envelope.
type StatusResponse struct {
	Object  string `json:"object"`
	Message string `json:"message"`
}

// List creates a list envelope. A nil slice is never emitted as null.
func List[T any](data []T) *ListResponse {
	if data == nil {
		data = []T{}
	}
	return &ListResponse{Object: ObjectList, Data: data}
}

// Status creates a status envelope.
func Status(message string) *StatusResponse {
	return &StatusResponse{Object: ObjectStatus, Message: message}
}

// Err creates an error body from an Errno.
func Err(e *errors.Errno) *ErrorBody {
	if e == nil {
		e = errors.ErrInternal
	}
	return &ErrorBody{
		Error:  e.MessageEN,
		Detail: e.Detail(),
	}
}

// OK writes a 200 JSON response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// Fail writes the error response for err and aborts the handler chain.
func Fail(c *gin.Context, err error) {
	e := errors.FromError(err)
	c.Header(HeaderErrorCode, strconv.Itoa(e.Code))
	c.AbortWithStatusJSON(e.HTTPStatus(), Err(e))
}

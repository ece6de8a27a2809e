package utils

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo is the status, message and machine code of a mapped error.
type HTTPErrorInfo struct {
	Status  int
	Message string
	Code    string
}

// ErrorMapping maps one error kind to a response. When Expose is set the
// error's own message is returned to the client instead of Message.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
	Code    string
	Expose  bool
}

// ErrorMapper maps service errors to HTTP responses with errors.Is.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
	defaultCode    string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
		defaultCode:    "internal_error",
	}
}

// WithMapping registers a mapping. Earlier mappings win.
func (m *ErrorMapper) WithMapping(mapping ErrorMapping) *ErrorMapper {
	m.mappings = append(m.mappings, mapping)
	return m
}

// WithDefault sets the response for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message, code string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	m.defaultCode = code
	return m
}

func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout", Code: "timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled", Code: "cancelled"}
	}

	for _, mapping := range m.mappings {
		if !errors.Is(err, mapping.Error) {
			continue
		}
		msg := mapping.Message
		if mapping.Expose || msg == "" {
			msg = err.Error()
		}
		return HTTPErrorInfo{Status: mapping.Status, Message: msg, Code: mapping.Code}
	}

	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage, Code: m.defaultCode}
}

package apperr

import "net/http"

// Code classifies an Error.
type Code string

const (
	CodeValidation           Code = "VALIDATION"
	CodeNotFound             Code = "NOT_FOUND"
	CodeNotLearned           Code = "NOT_LEARNED"
	CodeDisabled             Code = "DISABLED"
	CodeInsufficientResource Code = "INSUFFICIENT_RESOURCE"
	CodeInvalidState         Code = "INVALID_STATE"
	CodeConflict             Code = "CONFLICT"
	CodeInternal             Code = "INTERNAL"
)

func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the status code the REST layer answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound, CodeNotLearned:
		return http.StatusNotFound
	case CodeDisabled, CodeInsufficientResource:
		return http.StatusUnprocessableEntity
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

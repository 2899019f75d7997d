package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	ErrInvalidJsonFormat = errors.New("invalid JSON format")
	ErrInvalidStatus     = errors.New("invalid status transition")
	ErrInvalidCredential = errors.New("invalid credential")

	ErrDeprecated     = errors.New("deprecated")
	ErrNotImplemented = errors.New("not implemented")
)

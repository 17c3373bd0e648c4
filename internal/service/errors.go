package service

import (
	"errors"

	"github.com/aanand-mishra/users-api/internal/model"
	"github.com/aanand-mishra/users-api/internal/storage"
)

// ErrorType labels the class of failure in an error envelope.
type ErrorType string

const (
	General    ErrorType = "general"
	Validation ErrorType = "validation"
	Model      ErrorType = "model"
	Backend    ErrorType = "backend"
)

// Classify maps err onto the envelope's error types. Coercion failures
// count as validation: the caller sent a value of the wrong type.
func Classify(err error) ErrorType {
	var (
		validationErr *model.ValidationError
		coercionErr   *model.CoercionError
		modelErr      *model.ModelError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &coercionErr):
		return Validation
	case errors.As(err, &modelErr):
		return Model
	case errors.Is(err, storage.ErrBackend):
		return Backend
	}
	return General
}

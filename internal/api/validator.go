package api

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"touchbase/internal/types"
)

// Validator wraps go-playground/validator and translates its field errors
// into the platform's AppError codes so handlers never leak raw validator
// messages to clients.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator with the frequency rule registered.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()

	// "frequency" accepts any member of types.AllFrequencies.
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return types.Frequency(fl.Field().String()).IsValid()
	})

	return &Validator{validate: v, logger: logger}
}

// ValidateStruct validates the struct's tags and returns a *types.AppError
// describing the first failure class, with every individual field failure
// listed under Details["validation_errors"]. Returns nil when valid.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the caller passed a non-struct.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation failed", err)
	}

	fieldErrors := make([]map[string]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrors = append(fieldErrors, map[string]string{
			"field": strings.ToLower(fe.Field()),
			"rule":  fe.Tag(),
		})
	}

	first := validationErrs[0]
	return types.NewAppErrorWithDetails(
		codeForTag(first.Tag()),
		"invalid value for field '"+strings.ToLower(first.Field())+"'",
		err,
		map[string]any{"validation_errors": fieldErrors},
	)
}

// codeForTag maps a validator rule tag to the matching AppError code.
func codeForTag(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "frequency":
		return types.ErrCodeValidationInvalidFrequency
	default:
		return errCodeValidationInvalidValue
	}
}

// errCodeValidationInvalidValue covers rule failures that have no dedicated
// code (length caps, oneof, and similar).
const errCodeValidationInvalidValue types.ErrorCode = "validation_invalid_value"

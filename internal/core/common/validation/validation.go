package validation

import (
	"fmt"
	"math"
	"strings"

	errors "github.com/frahmantamala/uniform-manager/internal"
	"github.com/shopspring/decimal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

// Field registers a value for validation. The returned pointer is only valid
// until the next call to Field.
func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		case fmt.Stringer:
			// uuid.UUID and friends render their zero value as all zeros
			if s := v.String(); s == "" || strings.Trim(s, "0-") == "" {
				return errors.NewValidationFieldError(name, fmt.Sprintf("%s is required", name), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int64, code errors.ErrorCode) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := toInt64(value); ok && v < min {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s must be at least %d", name, min), code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return nil
		}
		if len(s) > max {
			return errors.NewValidationFieldError(name, fmt.Sprintf("%s must not exceed %d characters", name, max), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinItems(min int) *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if n, ok := value.(int); ok && n < min {
			return errors.NewValidationFieldError(name, fmt.Sprintf("at least %d %s must be selected", min, name), errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

// PositiveInteger accepts decimal.Decimal, int and int64 values.
func (fv *FieldValidator) PositiveInteger() *FieldValidator {
	name := fv.FieldName
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if !isPositiveInteger(value) {
			return errors.NewValidationFieldError(name, "Quantity must be a positive integer", errors.ErrCodeInvalidQuantity)
		}
		return nil
	})
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}

	// failures sharing one domain code surface that code at the top level
	code := errors.ErrCodeValidationFailed
	if shared := validationErrors[0].Code; shared != "" && allCoded(validationErrors, errors.ErrorCode(shared)) {
		code = errors.ErrorCode(shared)
	}
	return errors.NewValidationError("Validation failed", code).
		WithDetails(errors.ValidationErrors{Errors: validationErrors})
}

func allCoded(errs []errors.ValidationError, code errors.ErrorCode) bool {
	for _, e := range errs {
		if e.Code != string(code) {
			return false
		}
	}
	return true
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case *int64:
		if v == nil {
			return 0, false
		}
		return *v, true
	}
	return 0, false
}

// maxQuantity keeps decimals convertible with IntPart without wrapping.
var maxQuantity = decimal.NewFromInt(math.MaxInt64)

func isPositiveInteger(value interface{}) bool {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.IsPositive() && v.IsInteger() && v.LessThanOrEqual(maxQuantity)
	case int:
		return v > 0
	case int64:
		return v > 0
	}
	return false
}

// ValidateQuantity checks a single requested line quantity.
func ValidateQuantity(quantity interface{}) *errors.AppError {
	if !isPositiveInteger(quantity) {
		return errors.ErrInvalidQuantity
	}
	return nil
}

// ValidateRequestStatus checks status against the recognized set.
func ValidateRequestStatus(status string, allowed []string) *errors.AppError {
	for _, a := range allowed {
		if status == a {
			return nil
		}
	}
	return errors.ErrInvalidRequestStatus.WithDetails(map[string]interface{}{
		"status":  status,
		"allowed": allowed,
	})
}

package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	paymentMethods  = []string{"CASH", "BANK_TRANSFER", "MOBILE_MONEY", "CARD", "CHEQUE"}
	bookingStatuses = []string{"PENDING", "CONFIRMED", "CHECKED_IN", "CHECKED_OUT", "CANCELLED", "NO_SHOW"}
	roomConditions  = []string{"GOOD", "FAIR", "NEEDS_CLEANING", "DAMAGED"}
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("payment_method", oneOf(paymentMethods, false))
	// Empty status means "no filter".
	validate.RegisterValidation("booking_status", oneOf(bookingStatuses, true))
	validate.RegisterValidation("room_condition", oneOf(roomConditions, true))
}

func oneOf(values []string, allowEmpty bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
		if v == "" {
			return allowEmpty
		}
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "payment_method":
			errors[field] = "Invalid payment method. Must be: " + strings.Join(paymentMethods, ", ")
		case "booking_status":
			errors[field] = "Invalid booking status. Must be: " + strings.Join(bookingStatuses, ", ")
		case "room_condition":
			errors[field] = "Invalid room condition. Must be: " + strings.Join(roomConditions, ", ")
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

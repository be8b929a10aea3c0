package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

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

	// Register custom validations
	registerCustomValidations()
}

func registerCustomValidations() {
	// Campaign category validation
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{
			"technology", "art", "music", "film", "games",
			"publishing", "food", "fashion", "community", "education", "",
		}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})

	// Transaction type validation
	validate.RegisterValidation("tx_type", func(fl validator.FieldLevel) bool {
		txType := fl.Field().String()
		validTypes := []string{"deposit", "withdrawal", "contribution", "refund", ""}
		for _, t := range validTypes {
			if txType == t {
				return true
			}
		}
		return false
	})

	// Payment method validation
	validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		method := fl.Field().String()
		return method == "khalti" || method == "wallet"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
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
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "category":
			errors[field] = "Invalid campaign category"
		case "tx_type":
			errors[field] = "Invalid transaction type. Must be: deposit, withdrawal, contribution, or refund"
		case "payment_method":
			errors[field] = "Invalid payment method. Must be: khalti or wallet"
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
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

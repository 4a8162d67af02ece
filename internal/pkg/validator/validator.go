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

	registerCustomValidations()
}

func registerCustomValidations() {
	// Report category validation
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{"roads", "lighting", "waste", "water", "parks", "safety", "other"}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})

	// Report status validation
	validate.RegisterValidation("report_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{"pending", "assessed", "in_progress", "resolved", "rejected"}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})

	// Sort order validation
	validate.RegisterValidation("sort_order", func(fl validator.FieldLevel) bool {
		order := fl.Field().String()
		return order == "" || order == "asc" || order == "desc"
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
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "latitude":
			errors[field] = "Invalid latitude"
		case "longitude":
			errors[field] = "Invalid longitude"
		case "category":
			errors[field] = "Invalid category. Must be: roads, lighting, waste, water, parks, safety, or other"
		case "report_status":
			errors[field] = "Invalid status. Must be: pending, assessed, in_progress, resolved, or rejected"
		case "sort_order":
			errors[field] = "Invalid sort order. Must be: asc or desc"
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

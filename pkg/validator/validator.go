package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

// Usernames double as file and schema names, so keep them to a safe alphabet
var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

var validate = validator.New()

func init() {
	// Report json field names so messages match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// oneOf keeps the allowed values of tags added by RegisterOneOf, for messages
var oneOf = map[string][]string{}

// RegisterOneOf adds a tag that accepts only the listed values. Fields of any
// string kind are compared by value. Call it during package initialisation.
func RegisterOneOf(tag string, allowed ...string) {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	oneOf[tag] = allowed
	validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrs {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Message renders a validation failure the way the API reports it
func (e *ErrorResponse) Message() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.FailedField)
	case "username":
		return fmt.Sprintf("%s may only contain lowercase letters, digits, '-' and '_'", e.FailedField)
	}
	if allowed, ok := oneOf[e.Tag]; ok {
		return fmt.Sprintf("%s must be one of %s", e.FailedField, strings.Join(allowed, ", "))
	}
	if e.Value != "" {
		return fmt.Sprintf("%s failed on '%s=%s'", e.FailedField, e.Tag, e.Value)
	}
	return fmt.Sprintf("%s failed on '%s'", e.FailedField, e.Tag)
}

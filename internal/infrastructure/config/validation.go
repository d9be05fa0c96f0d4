package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// Validator wraps go-playground/validator with the resource rules shared by
// configuration files and scenario documents
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their file keys
// and understands resource references:
//
//	resource_id    amount:<n> or item:<n>
//	resource_name  a catalog name, no kind prefix
//	resource_ref   either of the above
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fileKey)

	rules := map[string]validator.Func{
		"resource_id":   isResourceID,
		"resource_name": isResourceName,
		"resource_ref":  isResourceRef,
	}
	for tag, fn := range rules {
		// Registration only fails for empty tags or nil funcs
		_ = v.RegisterValidation(tag, fn)
	}

	return &Validator{validate: v}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError lists each failed field as a dotted key path
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			keyPath(e.Namespace()),
			describeTag(e),
			e.Value(),
		))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// fileKey names a field after its mapstructure or yaml key
func fileKey(field reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// keyPath drops the root struct name: "Config.loading.load_rate" -> "loading.load_rate"
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describeTag(e validator.FieldError) string {
	switch e.Tag() {
	case "resource_id":
		return "resource_id (expected amount:<n> or item:<n>)"
	case "resource_name":
		return "resource_name (expected a name without a kind prefix)"
	case "resource_ref":
		return "resource_ref (expected a resource name, amount:<n> or item:<n>)"
	}
	if e.Param() != "" {
		return e.Tag() + "=" + e.Param()
	}
	return e.Tag()
}

func isResourceID(fl validator.FieldLevel) bool {
	_, err := resource.ParseResourceID(fl.Field().String())
	return err == nil
}

func isResourceName(fl validator.FieldLevel) bool {
	name := strings.TrimSpace(fl.Field().String())
	return name != "" && !strings.Contains(name, ":")
}

func isResourceRef(fl validator.FieldLevel) bool {
	ref := strings.TrimSpace(fl.Field().String())
	if strings.Contains(ref, ":") {
		_, err := resource.ParseResourceID(ref)
		return err == nil
	}
	return ref != ""
}

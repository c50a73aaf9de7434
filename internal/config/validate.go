package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"jtools/internal/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable. The stored connection is
// only checked when it carries a token; network commands validate the
// effective connection before contacting the server.
func (c *Config) Validate() error {
	if err := validateStruct(c, ""); err != nil {
		return err
	}
	if c.Connection.Configured() {
		if err := c.Connection.WithDefaults().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the server URL and token are present, the URL uses
// http or https, and the timeout is positive.
func (c Connection) Validate() error {
	c.ServerURL = strings.TrimSpace(c.ServerURL)
	c.APIToken = strings.TrimSpace(c.APIToken)
	if c.APIToken == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			"connection.api_token is required; pass --token, set JELLYFIN_API_KEY, or run 'jtools config save'", nil)
	}
	return validateStruct(c, "connection.")
}

func validateStruct(value any, prefix string) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "invalid configuration", err)
	}
	return services.Wrap(services.ErrConfiguration, "config", "validate", describeFieldError(fieldErrs[0], prefix), nil)
}

func describeFieldError(fe validator.FieldError, prefix string) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	field = prefix + field
	tag := fe.Tag()
	if strings.HasPrefix(tag, "startswith") {
		return fmt.Sprintf("%s must start with http:// or https:// (got %q)", field, fe.Value())
	}
	switch tag {
	case "required":
		return fmt.Sprintf("%s must be set", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

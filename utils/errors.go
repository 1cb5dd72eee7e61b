package utils

import (
	"github.com/pkg/errors"
)

// NewConfigValidationFieldRequiredError returns an error for a config missing a required field.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return errors.Errorf("%s: %q is required", path, field)
}

// NewConfigValidationError returns an error specifying a config validation error.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

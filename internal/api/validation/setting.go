package validation

import "strings"

// SetConfigurationRequest mirrors the fields needed for configuration validation.
type SetConfigurationRequest struct {
	Key string
}

// ValidateSetConfigurationRequest validates the fields of a set configuration request.
func ValidateSetConfigurationRequest(req SetConfigurationRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Key) == "" {
		errs = append(errs, FieldError{Field: "key", Message: "key is required"})
	} else if len(req.Key) > 255 {
		errs = append(errs, FieldError{Field: "key", Message: "key must be at most 255 characters"})
	}

	return errs
}

package validation

import (
	"strings"

	"github.com/brightwave/profiler/internal/emoji"
)

// CreateGroupRequest mirrors the fields needed for create group validation.
type CreateGroupRequest struct {
	Name             string
	DisplayAs        string
	ProfilerTypeName string
	Emoji            string
}

// ValidateCreateGroupRequest validates the fields of a create group request.
// An empty emoji is allowed; the handler substitutes the default icon.
func ValidateCreateGroupRequest(req CreateGroupRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if strings.TrimSpace(req.DisplayAs) == "" {
		errs = append(errs, FieldError{Field: "displayAs", Message: "displayAs is required"})
	}

	if strings.TrimSpace(req.ProfilerTypeName) == "" {
		errs = append(errs, FieldError{Field: "profilerTypeName", Message: "profilerTypeName is required"})
	}

	if req.Emoji != "" && !emoji.IsSingleEmoji(req.Emoji) {
		errs = append(errs, FieldError{Field: "emoji", Message: "emoji must be a single emoji"})
	}

	return errs
}

// UpdateGroupRequest mirrors the fields needed for update group validation.
// Nil fields are not being changed.
type UpdateGroupRequest struct {
	Name  *string
	Emoji *string
}

// ValidateUpdateGroupRequest validates the fields of an update group request.
func ValidateUpdateGroupRequest(req UpdateGroupRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
		} else if len(*req.Name) > 255 {
			errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
		}
	}

	if req.Emoji != nil && !emoji.IsSingleEmoji(*req.Emoji) {
		errs = append(errs, FieldError{Field: "emoji", Message: "emoji must be a single emoji"})
	}

	return errs
}

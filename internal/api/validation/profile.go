package validation

import "strings"

// CreateProfileRequest mirrors the fields needed for create profile validation.
type CreateProfileRequest struct {
	GroupToken string
}

// ValidateCreateProfileRequest validates the fields of a create profile request.
func ValidateCreateProfileRequest(req CreateProfileRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.GroupToken) == "" {
		errs = append(errs, FieldError{Field: "groupToken", Message: "groupToken is required"})
	}

	return errs
}

// AnswerRequest mirrors the fields needed for answer validation.
type AnswerRequest struct {
	Question string
	Score    *int
}

// ValidateAnswerRequest validates the fields of an answer submission.
func ValidateAnswerRequest(req AnswerRequest) []FieldError {
	var errs []FieldError

	if req.Question == "" {
		errs = append(errs, FieldError{Field: "question", Message: "question is required"})
	}

	if req.Score == nil {
		errs = append(errs, FieldError{Field: "score", Message: "score is required"})
	} else if *req.Score < 0 {
		errs = append(errs, FieldError{Field: "score", Message: "score must not be negative"})
	}

	return errs
}

// ProfileNameRequest mirrors the fields needed for profile rename validation.
type ProfileNameRequest struct {
	Name string
}

// ValidateProfileNameRequest validates the fields of a profile rename request.
func ValidateProfileNameRequest(req ProfileNameRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}

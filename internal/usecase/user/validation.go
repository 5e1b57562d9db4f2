package user

import (
	apperrors "user-service/pkg/errors"
	"user-service/pkg/validation"
)

var (
	nameRules     = []validation.Rule{validation.NotBlank(), validation.Trimmed(), validation.Length(3, 50)}
	emailRules    = []validation.Rule{validation.NotBlank(), validation.Trimmed(), validation.Email()}
	passwordRules = []validation.Rule{validation.NotBlank(), validation.Trimmed(), validation.Length(3, 20)}
)

// Validate checks a create request. Every field is required.
func Validate(in UserRequest) []apperrors.Violation {
	return validate(in, false)
}

// ValidatePartial checks an update request. Absent fields are skipped,
// present fields go through the same rules as on create.
func ValidatePartial(in UserRequest) []apperrors.Violation {
	return validate(in, true)
}

func validate(in UserRequest, partial bool) []apperrors.Violation {
	return validation.Validate(
		validation.Field{Name: "name", Value: in.Name, Rules: nameRules, Optional: partial},
		validation.Field{Name: "email", Value: in.Email, Rules: emailRules, Optional: partial},
		validation.Field{Name: "password", Value: in.Password, Rules: passwordRules, Optional: partial},
	)
}

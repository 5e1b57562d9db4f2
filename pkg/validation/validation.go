// Package validation evaluates ordered per-field rule lists and aggregates
// every violation instead of stopping at the first one.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperrors "user-service/pkg/errors"
)

// Kind tags the predicate a Rule applies.
type Kind int

const (
	// KindNotBlank rejects values that are empty once trimmed.
	KindNotBlank Kind = iota
	// KindTrimmed rejects values with leading or trailing space or control characters.
	KindTrimmed
	// KindLength rejects values whose rune count is outside [Min, Max].
	KindLength
	// KindEmail rejects values that are not shaped like an e-mail address.
	KindEmail
)

// Default messages used by the rule constructors.
const (
	MsgNotBlank = "must not be null or empty"
	MsgTrimmed  = "field cannot have blank spaces at the end or the begin"
	MsgEmail    = "invalid e-mail"
)

// email format checks reuse the validator library as a plain predicate
var formats = validator.New()

// Rule is a single predicate plus the message reported when it fails.
type Rule struct {
	Kind    Kind
	Min     int
	Max     int
	Message string
}

// NotBlank returns a not-blank rule.
func NotBlank() Rule {
	return Rule{Kind: KindNotBlank, Message: MsgNotBlank}
}

// Trimmed returns the no leading/trailing whitespace rule.
func Trimmed() Rule {
	return Rule{Kind: KindTrimmed, Message: MsgTrimmed}
}

// Length returns a length rule with the "must be between" message.
func Length(min, max int) Rule {
	return Rule{
		Kind:    KindLength,
		Min:     min,
		Max:     max,
		Message: fmt.Sprintf("must be between %d and %d characters", min, max),
	}
}

// Email returns an e-mail format rule.
func Email() Rule {
	return Rule{Kind: KindEmail, Message: MsgEmail}
}

// Check reports whether value satisfies the rule.
func (r Rule) Check(value string) bool {
	switch r.Kind {
	case KindNotBlank:
		return trim(value) != ""
	case KindTrimmed:
		return trim(value) == value
	case KindLength:
		n := utf8.RuneCountInString(value)
		return n >= r.Min && n <= r.Max
	case KindEmail:
		return formats.Var(value, "email") == nil
	default:
		return false
	}
}

// trim strips leading and trailing code points at or below U+0020 (space and
// ASCII control characters). Other Unicode spaces such as U+00A0 are kept.
func trim(value string) string {
	return strings.TrimFunc(value, func(r rune) bool { return r <= ' ' })
}

// Field binds a value to the rules evaluated against it.
// A nil Value means the field was absent from the input.
type Field struct {
	Name     string
	Value    *string
	Rules    []Rule
	Optional bool // absent optional fields are not validated
}

// Validate evaluates every rule of every field in order.
//
// A nil or empty value only reports its not-blank rule; any other value is
// checked against every rule independently.
func Validate(fields ...Field) []apperrors.Violation {
	var violations []apperrors.Violation
	for _, f := range fields {
		violations = append(violations, f.validate()...)
	}
	return violations
}

func (f Field) validate() []apperrors.Violation {
	if f.Value == nil && f.Optional {
		return nil
	}

	var out []apperrors.Violation
	if f.Value == nil || *f.Value == "" {
		for _, r := range f.Rules {
			if r.Kind == KindNotBlank {
				out = append(out, apperrors.Violation{Field: f.Name, Message: r.Message})
			}
		}
		return out
	}

	for _, r := range f.Rules {
		if !r.Check(*f.Value) {
			out = append(out, apperrors.Violation{Field: f.Name, Message: r.Message})
		}
	}
	return out
}

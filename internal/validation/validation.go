package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/circleworks/beacon/internal/types"
)

// Field length limits for free-text input.
const (
	MaxContextLength = 2000
	MaxTagLength     = 64
	MaxTags          = 16
	MaxCityLength    = 200
	MaxDetailsLength = 500
	MaxReasonLength  = 200
	MaxCommentLength = 1000
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{Field: field, Message: "must not contain null bytes"}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max].
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %.1f and %.1f", min, max),
		}
	}
	return nil
}

// ValidateULID returns an error if the value is not a valid ULID format.
// ULIDs are 26 characters of Crockford Base32 (no I, L, O, U).
func ValidateULID(field, value string) *ValidationError {
	if len(value) != 26 {
		return &ValidationError{Field: field, Message: "must be a valid ULID (26 characters)"}
	}

	const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	for _, r := range value {
		upper := strings.ToUpper(string(r))
		if !strings.Contains(crockfordBase32, upper) {
			return &ValidationError{Field: field, Message: "must be a valid ULID (invalid character)"}
		}
	}
	return nil
}

// validateText runs the shared free-text checks.
func validateText(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateNewIntent checks an intent creation payload.
func ValidateNewIntent(in types.NewIntent) []ValidationError {
	var c Collector

	c.Add(ValidateEnum("kind", string(in.Kind), []string{
		string(types.KindAsk), string(types.KindOffer), string(types.KindRally),
	}))
	c.Add(ValidateEnum("level", string(in.Level), []string{
		string(types.LevelDirect), string(types.LevelFriend), string(types.LevelPublic),
	}))
	c.Add(ValidateRequired("author", in.Author))
	validateText(&c, "context", in.Context, MaxContextLength)

	if len(in.Tags) > MaxTags {
		c.Add(&ValidationError{Field: "tags", Message: fmt.Sprintf("exceeds maximum of %d tags", MaxTags)})
	}
	for i, tag := range in.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		c.Add(ValidateRequired(field, tag))
		validateText(&c, field, tag, MaxTagLength)
	}

	if in.Location != nil {
		c.Add(ValidateRequired("location.city", in.Location.City))
		validateText(&c, "location.city", in.Location.City, MaxCityLength)
		c.Add(ValidateRange("location.lat", in.Location.Lat, -90, 90))
		c.Add(ValidateRange("location.lng", in.Location.Lng, -180, 180))
	}

	return c.Errors()
}

// ValidateContributionInput checks a pledge payload.
func ValidateContributionInput(in types.ContributionInput) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("contributor", in.Contributor))
	c.Add(ValidateEnum("type", string(in.Type), []string{
		string(types.ContributionServices), string(types.ContributionMonetary), string(types.ContributionGoods),
	}))
	c.Add(ValidateEnum("return_expectation", string(in.ReturnExpectation), []string{
		string(types.ReturnNothing), string(types.ReturnSpecific), string(types.ReturnCredit),
	}))
	validateText(&c, "details", in.Details, MaxDetailsLength)
	validateText(&c, "value", in.Value, MaxDetailsLength)

	return c.Errors()
}

// ValidateOutcome checks a lifecycle transition payload. The rating range
// is enforced here, at the boundary; the state machine itself stores any
// rating it is handed.
func ValidateOutcome(o types.Outcome) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("reason", o.Reason))
	validateText(&c, "reason", o.Reason, MaxReasonLength)
	validateText(&c, "comment", o.Comment, MaxCommentLength)
	c.Add(ValidateRange("rating", float64(o.Rating), 1, 5))

	return c.Errors()
}

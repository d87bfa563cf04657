package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Letters, spaces and the punctuation found in real names: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)

	// GitHub usernames: alphanumeric with single inner hyphens, max 39 chars
	githubUsernameRegex = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)
)

// New returns a validator with the custom rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("github_username", GithubUsername)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// GithubUsername validates the GitHub username format
func GithubUsername(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return githubUsernameRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

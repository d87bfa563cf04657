package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// HR registration
	"Email":               "Email",
	"FirstName":           "First name",
	"LastName":            "Last name",
	"Company":             "Company",
	"MaxReservedStudents": "Maximum reserved students",

	// Imported student data
	"CourseCompletion":  "Course completion",
	"CourseEngagement":  "Course engagement",
	"ProjectDegree":     "Project degree",
	"TeamProjectDegree": "Team project degree",
	"BonusProjectUrls":  "Bonus project URLs",

	// Student filter
	"MinCourseCompletion":  "Minimum course completion",
	"MinCourseEngagement":  "Minimum course engagement",
	"MinProjectDegree":     "Minimum project degree",
	"MinTeamProjectDegree": "Minimum team project degree",
	"ExpectedTypeWork":     "Expected type of work",
	"ExpectedContractType": "Expected contract type",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// JoinValidationErrors formats err as a single sentence
func JoinValidationErrors(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "email":
		return fmt.Sprintf("%s: must be a valid email address", label)
	case "url":
		return fmt.Sprintf("%s: must be a valid URL", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s", label, strings.ReplaceAll(param, " ", ", "))
	case "valid_name":
		return fmt.Sprintf("%s: contains invalid characters", label)
	case "github_username":
		return fmt.Sprintf("%s: is not a valid GitHub username", label)
	default:
		return fmt.Sprintf("%s: is invalid", label)
	}
}

// getFieldLabel strips slice indexes ("BonusProjectUrls[0]") before looking up the label
func getFieldLabel(field string) string {
	base := field
	if i := strings.IndexByte(field, '['); i > 0 {
		base = field[:i]
	}
	if label, ok := FieldLabels[base]; ok {
		return label
	}
	return field
}

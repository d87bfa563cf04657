package domain

import "context"

// ImportedStudentData is one row of an imported student list.
type ImportedStudentData struct {
	Email             string   `json:"email" validate:"required,email,max=255"`
	CourseCompletion  float64  `json:"course_completion" validate:"min=0,max=5"`
	CourseEngagement  float64  `json:"course_engagement" validate:"min=0,max=5"`
	ProjectDegree     float64  `json:"project_degree" validate:"min=0,max=5"`
	TeamProjectDegree float64  `json:"team_project_degree" validate:"min=0,max=5"`
	BonusProjectUrls  []string `json:"bonus_project_urls" validate:"dive,url,max=255"`
	// Line is the 1-based line in the uploaded file, header included; 0 when unknown
	Line int `json:"-"`
}

// StudentImportSource yields the records of a student import in input order.
type StudentImportSource interface {
	Records(ctx context.Context) ([]ImportedStudentData, error)
}

// StudentImportError describes a record that was skipped because it failed validation.
type StudentImportError struct {
	Row    int    `json:"row"` // Source file line when known, else 1-based record position
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// StudentRegistrationSummary holds the tallies of a bulk registration.
// Total == SuccessfullyRegistered + AlreadyRegistered + Rejected.
type StudentRegistrationSummary struct {
	Total                  int                  `json:"number_of_students_to_register"`
	SuccessfullyRegistered int                  `json:"number_of_successfully_registered"`
	AlreadyRegistered      int                  `json:"number_of_emails_already_registered"`
	Rejected               int                  `json:"number_of_rejected"`
	Errors                 []StudentImportError `json:"errors,omitempty"`
}

type RegistrationUsecase interface {
	RegisterHr(ctx context.Context, req *HrRegisterRequest) (*HrRegistrationResult, error)
	RegisterStudents(ctx context.Context, source StudentImportSource) (*StudentRegistrationSummary, error)
}

type ActivationUsecase interface {
	Activate(ctx context.Context, userID, token string) (*SanitizedUser, error)
}

// ActivationMessage is the content of an account activation email.
type ActivationMessage struct {
	ToEmail  string
	UserID   string
	Token    string
	Password string // Plaintext, mailed once and never stored
	Role     string
}

type ActivationMailer interface {
	SendActivationLink(ctx context.Context, msg ActivationMessage) error
}

package domain

import (
	"context"
	"time"
)

// Expected type of work
const (
	TypeWorkOnsite     = "ONSITE"
	TypeWorkRelocation = "RELOCATION"
	TypeWorkRemote     = "REMOTE"
	TypeWorkHybrid     = "HYBRID"
	TypeWorkAny        = "ANY"
)

// Expected contract type
const (
	ContractEmployment = "EMPLOYMENT"
	ContractB2B        = "B2B"
	ContractMandate    = "MANDATE"
	ContractAny        = "ANY"
)

// StudentGrades are the bootcamp scores, each on a 0-5 scale.
type StudentGrades struct {
	CourseCompletion  float64 `json:"course_completion"`
	CourseEngagement  float64 `json:"course_engagement"`
	ProjectDegree     float64 `json:"project_degree"`
	TeamProjectDegree float64 `json:"team_project_degree"`
}

type StudentProfile struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"user_id"`
	FirstName             string        `json:"first_name"`
	LastName              string        `json:"last_name"`
	Email                 string        `json:"email"`
	Tel                   *string       `json:"tel,omitempty"`
	GithubUsername        *string       `json:"github_username,omitempty"` // Unique when set
	Grades                StudentGrades `json:"grades"`
	PortfolioUrls         []string      `json:"portfolio_urls"`
	ProjectUrls           []string      `json:"project_urls"`
	BonusProjectUrls      []string      `json:"bonus_project_urls"`
	Bio                   *string       `json:"bio,omitempty"`
	ExpectedTypeWork      string        `json:"expected_type_work"`
	TargetWorkCity        *string       `json:"target_work_city,omitempty"`
	ExpectedContractType  string        `json:"expected_contract_type"`
	ExpectedSalary        *string       `json:"expected_salary,omitempty"`
	CanTakeApprenticeship bool          `json:"can_take_apprenticeship"`
	MonthsOfCommercialExp int           `json:"months_of_commercial_exp"`
	Education             *string       `json:"education,omitempty"`
	WorkExperience        *string       `json:"work_experience,omitempty"`
	Courses               *string       `json:"courses,omitempty"`
	HrProfileID           *string       `json:"hr_profile_id,omitempty"` // Reserving HR, if any
	ReservedUntil         *time.Time    `json:"reserved_until,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// IsReserved reports whether the student holds an unexpired reservation at now.
func (s *StudentProfile) IsReserved(now time.Time) bool {
	return s.HrProfileID != nil && s.ReservedUntil != nil && s.ReservedUntil.After(now)
}

// StudentFilter defines filtering options for the available students list
type StudentFilter struct {
	MinCourseCompletion   float64 `form:"min_course_completion" validate:"min=0,max=5"`
	MinCourseEngagement   float64 `form:"min_course_engagement" validate:"min=0,max=5"`
	MinProjectDegree      float64 `form:"min_project_degree" validate:"min=0,max=5"`
	MinTeamProjectDegree  float64 `form:"min_team_project_degree" validate:"min=0,max=5"`
	ExpectedTypeWork      string  `form:"expected_type_work" validate:"omitempty,oneof=ONSITE RELOCATION REMOTE HYBRID ANY"`
	ExpectedContractType  string  `form:"expected_contract_type" validate:"omitempty,oneof=EMPLOYMENT B2B MANDATE ANY"`
	CanTakeApprenticeship *bool   `form:"can_take_apprenticeship"`
	Page                  int     `form:"page"`
	Limit                 int     `form:"limit"`
}

// Student list paging
const (
	DefaultStudentPageSize = 20
	MaxStudentPageSize     = 100
	// MaxStudentPage keeps the row offset far from integer overflow
	MaxStudentPage = 100000
)

// PageBounds returns the effective page and limit, applying defaults and the upper bound.
func (f StudentFilter) PageBounds() (page, limit int) {
	page, limit = f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if page > MaxStudentPage {
		page = MaxStudentPage
	}
	if limit < 1 {
		limit = DefaultStudentPageSize
	}
	if limit > MaxStudentPageSize {
		limit = MaxStudentPageSize
	}
	return page, limit
}

type StudentRepository interface {
	// Create inserts the profile together with its grades and URL lists.
	Create(ctx context.Context, profile *StudentProfile) error
	GetByID(ctx context.Context, id string) (*StudentProfile, error)
	// GetByIDForUpdate locks the student row; must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*StudentProfile, error)
	ListAvailable(ctx context.Context, filter StudentFilter, now time.Time) ([]StudentProfile, int64, error)
	ListReservedBy(ctx context.Context, hrProfileID string, now time.Time) ([]StudentProfile, error)
	CountReservedBy(ctx context.Context, hrProfileID string, now time.Time) (int, error)
	SetReservation(ctx context.Context, studentID string, hrProfileID *string, reservedUntil *time.Time) error
}

type ReservationUsecase interface {
	ListAvailableStudents(ctx context.Context, filter StudentFilter) ([]StudentProfile, int64, error)
	ListReservedStudents(ctx context.Context, hrUserID string) ([]StudentProfile, error)
	ReserveStudent(ctx context.Context, hrUserID, studentID string) (*StudentProfile, error)
	ReleaseStudent(ctx context.Context, hrUserID, studentID string) error
}

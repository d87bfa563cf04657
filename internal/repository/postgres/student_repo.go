package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-headhunter-backend/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// URL kinds stored in student_urls
const (
	urlKindPortfolio = "portfolio"
	urlKindProject   = "project"
	urlKindBonus     = "bonus"
)

var studentColumns = []string{
	"s.id", "s.user_id", "s.first_name", "s.last_name", "s.email", "s.tel", "s.github_username",
	"s.bio", "s.expected_type_work", "s.target_work_city", "s.expected_contract_type", "s.expected_salary",
	"s.can_take_apprenticeship", "s.months_of_commercial_exp", "s.education", "s.work_experience",
	"s.courses", "s.hr_profile_id", "s.reserved_until", "s.created_at", "s.updated_at",
	"g.course_completion::float8", "g.course_engagement::float8", "g.project_degree::float8",
	"g.team_project_degree::float8",
}

type studentRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewStudentRepository(db *pgxpool.Pool) domain.StudentRepository {
	return &studentRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *studentRepo) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("student_profiles s").
		Join("student_grades g ON g.student_id = s.id")
}

// Create inserts the profile, its grades and URL lists in one transaction.
func (r *studentRepo) Create(ctx context.Context, p *domain.StudentProfile) error {
	if p.ExpectedTypeWork == "" {
		p.ExpectedTypeWork = domain.TypeWorkAny
	}
	if p.ExpectedContractType == "" {
		p.ExpectedContractType = domain.ContractAny
	}

	return NewTransactor(r.db).WithinTransaction(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)

		sql, args, err := r.sb.Insert("student_profiles").
			Columns("id", "user_id", "first_name", "last_name", "email", "tel", "github_username",
				"bio", "expected_type_work", "target_work_city", "expected_contract_type", "expected_salary",
				"can_take_apprenticeship", "months_of_commercial_exp", "education", "work_experience",
				"courses", "hr_profile_id", "reserved_until", "created_at", "updated_at").
			Values(p.ID, p.UserID, p.FirstName, p.LastName, p.Email, p.Tel, p.GithubUsername,
				p.Bio, p.ExpectedTypeWork, p.TargetWorkCity, p.ExpectedContractType, p.ExpectedSalary,
				p.CanTakeApprenticeship, p.MonthsOfCommercialExp, p.Education, p.WorkExperience,
				p.Courses, p.HrProfileID, p.ReservedUntil, p.CreatedAt, p.UpdatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert student query: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert student profile: %w", mapWriteError(err))
		}

		_, err = q.Exec(ctx,
			`INSERT INTO student_grades (student_id, course_completion, course_engagement, project_degree, team_project_degree)
             VALUES ($1, $2, $3, $4, $5)`,
			p.ID, p.Grades.CourseCompletion, p.Grades.CourseEngagement, p.Grades.ProjectDegree, p.Grades.TeamProjectDegree,
		)
		if err != nil {
			return fmt.Errorf("insert student grades: %w", err)
		}

		return r.insertURLs(ctx, q, p)
	})
}

func (r *studentRepo) insertURLs(ctx context.Context, q querier, p *domain.StudentProfile) error {
	ins := r.sb.Insert("student_urls").Columns("student_id", "kind", "url", "position")
	n := 0
	for _, set := range []struct {
		kind string
		urls []string
	}{
		{urlKindPortfolio, p.PortfolioUrls},
		{urlKindProject, p.ProjectUrls},
		{urlKindBonus, p.BonusProjectUrls},
	} {
		for i, u := range set.urls {
			ins = ins.Values(p.ID, set.kind, u, i)
			n++
		}
	}
	if n == 0 {
		return nil
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert student urls query: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert student urls: %w", err)
	}
	return nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*domain.StudentProfile, error) {
	return r.getOne(ctx, id, "")
}

func (r *studentRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.StudentProfile, error) {
	return r.getOne(ctx, id, "FOR UPDATE OF s")
}

func (r *studentRepo) getOne(ctx context.Context, id, suffix string) (*domain.StudentProfile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	b := r.baseSelect().Where(squirrel.Eq{"s.id": id})
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get student query: %w", err)
	}

	q := conn(ctx, r.db)
	p, err := scanStudent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	list := []domain.StudentProfile{*p}
	if err := r.loadURLs(ctx, q, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// availableAt matches students with no reservation or an expired one.
func availableAt(now time.Time) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"s.hr_profile_id": nil},
		squirrel.Eq{"s.reserved_until": nil},
		squirrel.LtOrEq{"s.reserved_until": now},
	}
}

func reservedBy(hrProfileID string, now time.Time) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"s.hr_profile_id": hrProfileID},
		squirrel.Gt{"s.reserved_until": now},
	}
}

func studentFilterConditions(f domain.StudentFilter, now time.Time) squirrel.And {
	cond := squirrel.And{availableAt(now)}
	if f.MinCourseCompletion > 0 {
		cond = append(cond, squirrel.GtOrEq{"g.course_completion": f.MinCourseCompletion})
	}
	if f.MinCourseEngagement > 0 {
		cond = append(cond, squirrel.GtOrEq{"g.course_engagement": f.MinCourseEngagement})
	}
	if f.MinProjectDegree > 0 {
		cond = append(cond, squirrel.GtOrEq{"g.project_degree": f.MinProjectDegree})
	}
	if f.MinTeamProjectDegree > 0 {
		cond = append(cond, squirrel.GtOrEq{"g.team_project_degree": f.MinTeamProjectDegree})
	}
	// A student open to ANY matches every specific preference
	if f.ExpectedTypeWork != "" && f.ExpectedTypeWork != domain.TypeWorkAny {
		cond = append(cond, squirrel.Eq{"s.expected_type_work": []string{f.ExpectedTypeWork, domain.TypeWorkAny}})
	}
	if f.ExpectedContractType != "" && f.ExpectedContractType != domain.ContractAny {
		cond = append(cond, squirrel.Eq{"s.expected_contract_type": []string{f.ExpectedContractType, domain.ContractAny}})
	}
	if f.CanTakeApprenticeship != nil {
		cond = append(cond, squirrel.Eq{"s.can_take_apprenticeship": *f.CanTakeApprenticeship})
	}
	return cond
}

func (r *studentRepo) ListAvailable(ctx context.Context, f domain.StudentFilter, now time.Time) ([]domain.StudentProfile, int64, error) {
	cond := studentFilterConditions(f, now)
	q := conn(ctx, r.db)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("student_profiles s").
		Join("student_grades g ON g.student_id = s.id").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count students query: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	page, limit := f.PageBounds()
	sql, args, err := r.baseSelect().
		Where(cond).
		OrderBy("s.created_at ASC", "s.id ASC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list students query: %w", err)
	}

	students, err := r.query(ctx, q, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) ListReservedBy(ctx context.Context, hrProfileID string, now time.Time) ([]domain.StudentProfile, error) {
	sql, args, err := r.baseSelect().
		Where(reservedBy(hrProfileID, now)).
		OrderBy("s.reserved_until ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reserved students query: %w", err)
	}
	return r.query(ctx, conn(ctx, r.db), sql, args...)
}

func (r *studentRepo) CountReservedBy(ctx context.Context, hrProfileID string, now time.Time) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("student_profiles s").
		Where(reservedBy(hrProfileID, now)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count reserved query: %w", err)
	}
	var n int
	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reserved students: %w", err)
	}
	return n, nil
}

func (r *studentRepo) SetReservation(ctx context.Context, studentID string, hrProfileID *string, reservedUntil *time.Time) error {
	sql, args, err := r.sb.Update("student_profiles").
		Set("hr_profile_id", hrProfileID).
		Set("reserved_until", reservedUntil).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reservation query: %w", err)
	}
	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (r *studentRepo) query(ctx context.Context, q querier, sql string, args ...any) ([]domain.StudentProfile, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	students := []domain.StudentProfile{}
	for rows.Next() {
		p, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	if err := r.loadURLs(ctx, q, students); err != nil {
		return nil, err
	}
	return students, nil
}

// loadURLs fills the URL lists of students from student_urls in a single query.
func (r *studentRepo) loadURLs(ctx context.Context, q querier, students []domain.StudentProfile) error {
	if len(students) == 0 {
		return nil
	}
	byID := make(map[string]*domain.StudentProfile, len(students))
	ids := make([]string, 0, len(students))
	for i := range students {
		s := &students[i]
		s.PortfolioUrls, s.ProjectUrls, s.BonusProjectUrls = []string{}, []string{}, []string{}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	sql, args, err := r.sb.Select("student_id", "kind", "url").
		From("student_urls").
		Where(squirrel.Eq{"student_id": ids}).
		OrderBy("student_id", "kind", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build student urls query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query student urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studentID, kind, url string
		if err := rows.Scan(&studentID, &kind, &url); err != nil {
			return fmt.Errorf("scan student url: %w", err)
		}
		s, ok := byID[studentID]
		if !ok {
			continue
		}
		switch kind {
		case urlKindPortfolio:
			s.PortfolioUrls = append(s.PortfolioUrls, url)
		case urlKindProject:
			s.ProjectUrls = append(s.ProjectUrls, url)
		case urlKindBonus:
			s.BonusProjectUrls = append(s.BonusProjectUrls, url)
		}
	}
	return rows.Err()
}

func scanStudent(row pgx.Row) (*domain.StudentProfile, error) {
	var p domain.StudentProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Tel, &p.GithubUsername,
		&p.Bio, &p.ExpectedTypeWork, &p.TargetWorkCity, &p.ExpectedContractType, &p.ExpectedSalary,
		&p.CanTakeApprenticeship, &p.MonthsOfCommercialExp, &p.Education, &p.WorkExperience,
		&p.Courses, &p.HrProfileID, &p.ReservedUntil, &p.CreatedAt, &p.UpdatedAt,
		&p.Grades.CourseCompletion, &p.Grades.CourseEngagement, &p.Grades.ProjectDegree,
		&p.Grades.TeamProjectDegree,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

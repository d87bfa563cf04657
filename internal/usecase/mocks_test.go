package usecase_test

import (
	"context"
	"sync"
	"time"

	"go-headhunter-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// memUserRepo is an in-memory UserRepository; lookups see every earlier write.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	creates int
	updates int
	// createErr, when set, is returned by the next Create instead of storing
	createErr error
}

func newMemUserRepo(seed ...domain.User) *memUserRepo {
	r := &memUserRepo{byID: map[string]domain.User{}}
	for _, u := range seed {
		r.byID[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.byID[user.ID] = *user
	r.creates++
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Activate(_ context.Context, id, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || u.IsActive || u.RegisterToken == nil || *u.RegisterToken != token {
		return domain.ErrInvalidActivation
	}
	u.IsActive = true
	u.RegisterToken = nil
	u.TokenExpiresAt = nil
	u.UpdatedAt = at
	r.byID[id] = u
	r.updates++
	return nil
}

func (r *memUserRepo) snapshot() map[string]domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]domain.User, len(r.byID))
	for k, v := range r.byID {
		out[k] = v
	}
	return out
}

func (r *memUserRepo) restore(s map[string]domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = s
}

// fakeTx runs fn directly and restores the user store when fn or the
// commit fails.
type fakeTx struct {
	users     *memUserRepo
	commitErr error
	commits   int
	rollbacks int
}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	var snap map[string]domain.User
	if t.users != nil {
		snap = t.users.snapshot()
	}
	err := fn(ctx)
	if err == nil && t.commitErr != nil {
		err = t.commitErr
	}
	if err != nil {
		if t.users != nil {
			t.users.restore(snap)
		}
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) Activate(ctx context.Context, id, token string, at time.Time) error {
	return m.Called(ctx, id, token, at).Error(0)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockHrProfileRepo struct {
	mock.Mock
}

func (m *MockHrProfileRepo) Create(ctx context.Context, profile *domain.HrProfile) error {
	return m.Called(ctx, profile).Error(0)
}
func (m *MockHrProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.HrProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HrProfile), args.Error(1)
}

func (m *MockHrProfileRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.HrProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HrProfile), args.Error(1)
}

type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, profile *domain.StudentProfile) error {
	return m.Called(ctx, profile).Error(0)
}
func (m *MockStudentRepo) GetByID(ctx context.Context, id string) (*domain.StudentProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentProfile), args.Error(1)
}
func (m *MockStudentRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.StudentProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentProfile), args.Error(1)
}
func (m *MockStudentRepo) ListAvailable(ctx context.Context, filter domain.StudentFilter, now time.Time) ([]domain.StudentProfile, int64, error) {
	args := m.Called(ctx, filter, now)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.StudentProfile), args.Get(1).(int64), args.Error(2)
}
func (m *MockStudentRepo) ListReservedBy(ctx context.Context, hrProfileID string, now time.Time) ([]domain.StudentProfile, error) {
	args := m.Called(ctx, hrProfileID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentProfile), args.Error(1)
}
func (m *MockStudentRepo) CountReservedBy(ctx context.Context, hrProfileID string, now time.Time) (int, error) {
	args := m.Called(ctx, hrProfileID, now)
	return args.Int(0), args.Error(1)
}
func (m *MockStudentRepo) SetReservation(ctx context.Context, studentID string, hrProfileID *string, reservedUntil *time.Time) error {
	return m.Called(ctx, studentID, hrProfileID, reservedUntil).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendActivationLink(ctx context.Context, msg domain.ActivationMessage) error {
	return m.Called(ctx, msg).Error(0)
}

package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/elijahtye/Tonr/internal/repository"
	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for *repository.Queries.
//
// It implements the store interfaces the services depend on, so tests can
// drive tier transitions and quota windows without a database. Error
// injection fields simulate storage failures.
type fakeStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]repository.User
	bySubject   map[string]uuid.UUID
	usageEvents []repository.UsageEvent
	analyses    []repository.Analysis

	// clock stamps created rows; tests pin it to control day windows.
	clock func() time.Time

	// Error injection
	createUserErr       error
	countErr            error
	createUsageEventErr error
	createAnalysisErr   error
	listAnalysesErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]repository.User),
		bySubject: make(map[string]uuid.UUID),
		clock:     time.Now,
	}
}

// addUser seeds a user and returns its ID.
func (f *fakeStore) addUser(u repository.User) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	if u.IdentitySubject != "" {
		f.bySubject[u.IdentitySubject] = u.ID
	}
	return u.ID
}

// addUsageEvent seeds a usage event at the given time.
func (f *fakeStore) addUsageEvent(userID uuid.UUID, tonality string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usageEvents = append(f.usageEvents, repository.UsageEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Tonality:  tonality,
		CreatedAt: at,
	})
}

func (f *fakeStore) usageEventCount(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.usageEvents {
		if e.UserID == userID {
			n++
		}
	}
	return n
}

func (f *fakeStore) CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error) {
	if f.createUserErr != nil {
		return repository.User{}, f.createUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.clock()
	u := repository.User{
		ID:                 uuid.New(),
		IdentitySubject:    arg.IdentitySubject,
		Email:              arg.Email,
		Name:               arg.Name,
		Tier:               "unset",
		SubscriptionStatus: "none",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.users[u.ID] = u
	f.bySubject[u.IdentitySubject] = u.ID
	return u, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) GetUserByIdentitySubject(ctx context.Context, subject string) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.bySubject[subject]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	return f.users[id], nil
}

func (f *fakeStore) GetUserByStripeCustomerID(ctx context.Context, customerID sql.NullString) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StripeCustomerID.Valid && customerID.Valid && u.StripeCustomerID.String == customerID.String {
			return u, nil
		}
	}
	return repository.User{}, sql.ErrNoRows
}

func (f *fakeStore) UpdateUserProfile(ctx context.Context, arg repository.UpdateUserProfileParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.ID]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	u.Email = arg.Email
	u.Name = arg.Name
	u.UpdatedAt = f.clock()
	f.users[arg.ID] = u
	return u, nil
}

func (f *fakeStore) UpdateUserStripeCustomer(ctx context.Context, arg repository.UpdateUserStripeCustomerParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.ID]
	if !ok {
		return sql.ErrNoRows
	}
	u.StripeCustomerID = arg.StripeCustomerID
	u.UpdatedAt = f.clock()
	f.users[arg.ID] = u
	return nil
}

func (f *fakeStore) UpdateUserTier(ctx context.Context, arg repository.UpdateUserTierParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.ID]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	u.Tier = arg.Tier
	u.UpdatedAt = f.clock()
	f.users[arg.ID] = u
	return u, nil
}

func (f *fakeStore) UpdateUserSubscription(ctx context.Context, arg repository.UpdateUserSubscriptionParams) (repository.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[arg.ID]
	if !ok {
		return repository.User{}, sql.ErrNoRows
	}
	u.Tier = arg.Tier
	u.SubscriptionStatus = arg.SubscriptionStatus
	u.StripeCustomerID = arg.StripeCustomerID
	u.StripeSubscriptionID = arg.StripeSubscriptionID
	u.UpdatedAt = f.clock()
	f.users[arg.ID] = u
	return u, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	delete(f.bySubject, u.IdentitySubject)
	delete(f.users, id)
	return nil
}

func (f *fakeStore) CountUsageEventsInRange(ctx context.Context, arg repository.CountUsageEventsInRangeParams) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, e := range f.usageEvents {
		if e.UserID != arg.UserID {
			continue
		}
		if !e.CreatedAt.Before(arg.CreatedAt) && e.CreatedAt.Before(arg.CreatedAt_2) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateUsageEvent(ctx context.Context, arg repository.CreateUsageEventParams) (repository.UsageEvent, error) {
	if f.createUsageEventErr != nil {
		return repository.UsageEvent{}, f.createUsageEventErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := repository.UsageEvent{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		Tonality:  arg.Tonality,
		CreatedAt: f.clock(),
	}
	f.usageEvents = append(f.usageEvents, e)
	return e, nil
}

func (f *fakeStore) DeleteUsageEventsByUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.usageEvents[:0]
	for _, e := range f.usageEvents {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	f.usageEvents = kept
	return nil
}

func (f *fakeStore) CreateAnalysis(ctx context.Context, arg repository.CreateAnalysisParams) (repository.Analysis, error) {
	if f.createAnalysisErr != nil {
		return repository.Analysis{}, f.createAnalysisErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := repository.Analysis{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Tonality:    arg.Tonality,
		Transcript:  arg.Transcript,
		Rating:      arg.Rating,
		Feedback:    arg.Feedback,
		RawResponse: arg.RawResponse,
		CreatedAt:   f.clock(),
	}
	f.analyses = append(f.analyses, a)
	return a, nil
}

func (f *fakeStore) ListAnalysesByUser(ctx context.Context, arg repository.ListAnalysesByUserParams) ([]repository.Analysis, error) {
	if f.listAnalysesErr != nil {
		return nil, f.listAnalysesErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Analysis
	for i := len(f.analyses) - 1; i >= 0; i-- {
		if f.analyses[i].UserID != arg.UserID {
			continue
		}
		out = append(out, f.analyses[i])
		if int32(len(out)) >= arg.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteAnalysesByUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.analyses[:0]
	for _, a := range f.analyses {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	f.analyses = kept
	return nil
}

// Compile-time checks that the fake satisfies the service store interfaces.
var (
	_ UserStore     = (*fakeStore)(nil)
	_ TierStore     = (*fakeStore)(nil)
	_ UsageCounter  = (*fakeStore)(nil)
	_ AnalysisStore = (*fakeStore)(nil)
)

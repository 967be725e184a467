package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tourbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserDirectory struct{ mock.Mock }

func (m *mockUserDirectory) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionProvider struct{ mock.Mock }

func (m *mockSessionProvider) RetrieveSession(ctx context.Context, id string) (*domain.PaymentSession, error) {
	args := m.Called(ctx, id)
	if s, _ := args.Get(0).(*domain.PaymentSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type issueCall struct {
	SessionID string
	Source    string
	Kind      domain.IssueKind
}

type fakeIssues struct {
	mu    sync.Mutex
	calls []issueCall
	err   error
}

func (f *fakeIssues) Record(_ context.Context, sessionID, source string, kind domain.IssueKind, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, issueCall{SessionID: sessionID, Source: source, Kind: kind})
	return f.err
}

type fakePublisher struct {
	mu      sync.Mutex
	created []domain.Booking
	err     error
}

func (f *fakePublisher) BookingCreated(_ context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *b)
	return f.err
}

// memStore enforces (tour, user) uniqueness like the database does. With
// blindPreCheck every lookup misses, so concurrent callers all reach Create.
type memStore struct {
	mu            sync.Mutex
	rows          []domain.Booking
	nextID        int64
	blindPreCheck bool
	findErr       error
	createErr     error
	createDelay   time.Duration
}

func (s *memStore) FindByTourAndUser(_ context.Context, tourID string, userID int64) (*domain.Booking, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blindPreCheck {
		return nil, domain.ErrNotFound
	}
	for _, b := range s.rows {
		if b.TourID == tourID && b.UserID == userID {
			cp := b
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Create(_ context.Context, b *domain.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.createDelay > 0 {
		time.Sleep(s.createDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.TourID == b.TourID && existing.UserID == b.UserID {
			return domain.ErrDuplicateBooking
		}
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now()
	s.rows = append(s.rows, *b)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

var testUser = &domain.User{ID: 1, Email: "a@b.com"}

func completedSession() domain.PaymentSession {
	return domain.PaymentSession{
		ID:            "cs_1",
		Status:        domain.SessionCompleted,
		CustomerEmail: "a@b.com",
		ItemReference: "tour_42",
		AmountTotal:   12000,
	}
}

func newTestReconciler(users UserDirectory, store BookingStore, sessions SessionProvider, issues IssueRecorder, pub BookingPublisher) *Reconciler {
	return NewReconciler(users, store, sessions, issues, pub, time.Second, nil)
}

func TestEnsureBookingForSession_CreatesThenAlreadyExists(t *testing.T) {
	users := &mockUserDirectory{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
	store, issues, pub := &memStore{}, &fakeIssues{}, &fakePublisher{}
	r := newTestReconciler(users, store, nil, issues, pub)

	first := r.EnsureBookingForSession(context.Background(), TriggerWebhook, completedSession())
	require.Equal(t, OutcomeCreated, first.Status)
	require.NoError(t, first.Err)
	require.NotNil(t, first.Booking)
	assert.Equal(t, "tour_42", first.Booking.TourID)
	assert.Equal(t, int64(1), first.Booking.UserID)
	assert.Equal(t, 120.0, first.Booking.Price)
	assert.Equal(t, "cs_1", first.Booking.SessionID)
	assert.True(t, first.Settled())

	second := r.EnsureBookingForSession(context.Background(), TriggerRedirect, completedSession())
	assert.Equal(t, OutcomeAlreadyExists, second.Status)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)

	assert.Equal(t, 1, store.count())
	assert.Len(t, pub.created, 1)
	assert.Empty(t, issues.calls)
}

func TestEnsureBookingForSession_NotCompletedIsSkipped(t *testing.T) {
	for _, status := range []domain.SessionStatus{domain.SessionOpen, domain.SessionExpired, ""} {
		t.Run(string(status), func(t *testing.T) {
			users := &mockUserDirectory{}
			store, issues := &memStore{}, &fakeIssues{}
			r := newTestReconciler(users, store, nil, issues, nil)

			s := completedSession()
			s.Status = status
			out := r.EnsureBookingForSession(context.Background(), TriggerWebhook, s)

			assert.Equal(t, OutcomeSkipped, out.Status)
			assert.True(t, out.Settled())
			assert.Zero(t, store.count())
			assert.Empty(t, issues.calls)
			users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestEnsureBookingForSession_UnresolvedUser(t *testing.T) {
	users := &mockUserDirectory{}
	users.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)
	store, issues := &memStore{}, &fakeIssues{}
	r := newTestReconciler(users, store, nil, issues, nil)

	s := completedSession()
	s.CustomerEmail = "ghost@b.com"
	out := r.EnsureBookingForSession(context.Background(), TriggerWebhook, s)

	assert.Equal(t, OutcomeUnresolvedUser, out.Status)
	assert.ErrorIs(t, out.Err, ErrUnresolvedUser)
	assert.False(t, out.Settled())
	assert.Zero(t, store.count())
	require.Len(t, issues.calls, 1)
	assert.Equal(t, issueCall{SessionID: "cs_1", Source: "webhook", Kind: domain.IssueUnresolvedUser}, issues.calls[0])
}

func TestEnsureBookingForSession_AbsentAmountIsZeroPrice(t *testing.T) {
	users := &mockUserDirectory{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
	store := &memStore{}
	r := newTestReconciler(users, store, nil, nil, nil)

	s := completedSession()
	s.AmountTotal = 0
	out := r.EnsureBookingForSession(context.Background(), TriggerWebhook, s)

	require.Equal(t, OutcomeCreated, out.Status)
	assert.Equal(t, 0.0, out.Booking.Price)
}

func TestEnsureBookingForSession_MissingFieldsAreInvalid(t *testing.T) {
	cases := map[string]func(*domain.PaymentSession){
		"no item reference": func(s *domain.PaymentSession) { s.ItemReference = " " },
		"no email":          func(s *domain.PaymentSession) { s.CustomerEmail = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			users := &mockUserDirectory{}
			store, issues := &memStore{}, &fakeIssues{}
			r := newTestReconciler(users, store, nil, issues, nil)

			s := completedSession()
			mutate(&s)
			out := r.EnsureBookingForSession(context.Background(), TriggerWebhook, s)

			assert.Equal(t, OutcomeInvalidSession, out.Status)
			assert.ErrorIs(t, out.Err, ErrIncompleteSession)
			assert.Zero(t, store.count())
			require.Len(t, issues.calls, 1)
			assert.Equal(t, domain.IssueInvalidSession, issues.calls[0].Kind)
		})
	}
}

func TestEnsureBookingForSession_TransientFailures(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("user lookup", func(t *testing.T) {
		users := &mockUserDirectory{}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, boom)
		issues := &fakeIssues{}
		out := newTestReconciler(users, &memStore{}, nil, issues, nil).
			EnsureBookingForSession(context.Background(), TriggerWebhook, completedSession())

		assert.Equal(t, OutcomeTransientFailure, out.Status)
		assert.ErrorIs(t, out.Err, ErrTransient)
		require.Len(t, issues.calls, 1)
		assert.Equal(t, domain.IssueTransientFailure, issues.calls[0].Kind)
	})

	t.Run("pre-check", func(t *testing.T) {
		users := &mockUserDirectory{}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
		store := &memStore{findErr: boom}
		out := newTestReconciler(users, store, nil, &fakeIssues{}, nil).
			EnsureBookingForSession(context.Background(), TriggerWebhook, completedSession())

		assert.Equal(t, OutcomeTransientFailure, out.Status)
		assert.Zero(t, store.count())
	})

	t.Run("create", func(t *testing.T) {
		users := &mockUserDirectory{}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
		pub := &fakePublisher{}
		out := newTestReconciler(users, &memStore{createErr: boom}, nil, &fakeIssues{}, pub).
			EnsureBookingForSession(context.Background(), TriggerWebhook, completedSession())

		assert.Equal(t, OutcomeTransientFailure, out.Status)
		assert.Empty(t, pub.created)
	})
}

func TestEnsureBookingForSession_RecorderAndPublisherFailuresDoNotLeak(t *testing.T) {
	users := &mockUserDirectory{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
	users.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)
	issues := &fakeIssues{err: errors.New("issues table locked")}
	pub := &fakePublisher{err: errors.New("broker down")}
	r := newTestReconciler(users, &memStore{}, nil, issues, pub)

	out := r.EnsureBookingForSession(context.Background(), TriggerWebhook, completedSession())
	assert.Equal(t, OutcomeCreated, out.Status)
	assert.NoError(t, out.Err)

	s := completedSession()
	s.ID = "cs_2"
	s.CustomerEmail = "ghost@b.com"
	out = r.EnsureBookingForSession(context.Background(), TriggerWebhook, s)
	assert.Equal(t, OutcomeUnresolvedUser, out.Status)
}

func TestEnsureBookingForSession_ConcurrentTriggersCreateOnce(t *testing.T) {
	const n = 16

	users := &mockUserDirectory{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
	store := &memStore{blindPreCheck: true, createDelay: time.Millisecond}
	pub := &fakePublisher{}
	r := newTestReconciler(users, store, nil, &fakeIssues{}, pub)

	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			trigger := TriggerWebhook
			if i%2 == 1 {
				trigger = TriggerRedirect
			}
			outcomes[i] = r.EnsureBookingForSession(context.Background(), trigger, completedSession())
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for _, out := range outcomes {
		switch out.Status {
		case OutcomeCreated:
			created++
		case OutcomeAlreadyExists:
		default:
			t.Fatalf("unexpected outcome %s: %v", out.Status, out.Err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, store.count())
	assert.Len(t, pub.created, 1)
}

func TestEnsureBookingForSessionID(t *testing.T) {
	t.Run("retrieves then reconciles", func(t *testing.T) {
		users := &mockUserDirectory{}
		users.On("GetByEmail", mock.Anything, "a@b.com").Return(testUser, nil)
		sessions := &mockSessionProvider{}
		s := completedSession()
		sessions.On("RetrieveSession", mock.Anything, "cs_1").Return(&s, nil)
		store := &memStore{}

		out := newTestReconciler(users, store, sessions, &fakeIssues{}, nil).
			EnsureBookingForSessionID(context.Background(), TriggerRedirect, " cs_1 ")

		assert.Equal(t, OutcomeCreated, out.Status)
		assert.Equal(t, 1, store.count())
	})

	t.Run("unknown id is not recorded", func(t *testing.T) {
		sessions := &mockSessionProvider{}
		sessions.On("RetrieveSession", mock.Anything, "cs_made_up").Return(nil, domain.ErrNotFound)
		issues := &fakeIssues{}

		out := newTestReconciler(&mockUserDirectory{}, &memStore{}, sessions, issues, nil).
			EnsureBookingForSessionID(context.Background(), TriggerRedirect, "cs_made_up")

		assert.Equal(t, OutcomeInvalidSession, out.Status)
		assert.ErrorIs(t, out.Err, ErrUnknownSession)
		assert.Empty(t, issues.calls)
	})

	t.Run("provider outage is transient", func(t *testing.T) {
		sessions := &mockSessionProvider{}
		sessions.On("RetrieveSession", mock.Anything, "cs_1").Return(nil, errors.New("503"))
		issues := &fakeIssues{}

		out := newTestReconciler(&mockUserDirectory{}, &memStore{}, sessions, issues, nil).
			EnsureBookingForSessionID(context.Background(), TriggerRedirect, "cs_1")

		assert.Equal(t, OutcomeTransientFailure, out.Status)
		require.Len(t, issues.calls, 1)
		assert.Equal(t, "redirect", issues.calls[0].Source)
	})

	t.Run("empty id", func(t *testing.T) {
		out := newTestReconciler(&mockUserDirectory{}, &memStore{}, &mockSessionProvider{}, nil, nil).
			EnsureBookingForSessionID(context.Background(), TriggerRedirect, "")
		assert.Equal(t, OutcomeInvalidSession, out.Status)
	})
}

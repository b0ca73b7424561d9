package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"astroseva/internal/database"
	"astroseva/internal/domain"
	"astroseva/internal/repository"
)

type fakeSummarizer struct {
	enabled bool
	text    string
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeSummarizer) Enabled() bool { return f.enabled }

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type fixedRoles map[string]domain.Role

func (r fixedRoles) ResolveRole(_ context.Context, id string) (domain.Role, error) {
	if role, ok := r[id]; ok {
		return role, nil
	}
	return domain.RoleUser, nil
}

type fixture struct {
	svc      *Service
	repo     *repository.BookingRepository
	families *repository.FamilyProfileRepository
	sum      *fakeSummarizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repository.Models()...))

	repo := repository.NewBookingRepository(db)
	families := repository.NewFamilyProfileRepository(db)
	sum := &fakeSummarizer{enabled: true, text: "Seeker asks about a career change."}
	roles := fixedRoles{
		astroP.ID: domain.RoleAstrologer,
		astroQ.ID: domain.RoleAstrologer,
		priest.ID: domain.RolePriest,
		"priest-2": domain.RolePriest,
	}
	return &fixture{
		svc:      NewService(repo, families, roles, sum),
		repo:     repo,
		families: families,
		sum:      sum,
	}
}

func (f *fixture) seed(t *testing.T, svc domain.ServiceType, requester domain.Actor) *domain.Booking {
	t.Helper()
	req := SubmitBookingRequest{
		ServiceType:   string(svc),
		Name:          "Asha",
		Phone:         "9876543210",
		PreferredSlot: domain.PreferredSlots[0],
		DOB:           "1990-04-12",
		BirthTime:     "6:30 AM",
		BirthState:    "Kerala",
		Description:   "Should I change jobs this year?",
	}
	if svc == domain.ServiceConsultation {
		req.ProblemCategory = "Career"
		req.DependentCategory = "Professional"
	} else {
		req.PoojaType = "Navgraha Shanti"
	}
	b, err := f.svc.Submit(context.Background(), req, requester)
	require.NoError(t, err)
	return b
}

func TestSubmit_CreatesPendingUnassigned(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.ServicePooja, userU)

	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Nil(t, b.AssignedTo)
	assert.Equal(t, userU.ID, *b.RequesterID)
}

func TestSubmit_AnonymousHasNoRequester(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.ServiceConsultation, domain.Actor{})
	assert.Nil(t, b.RequesterID)
}

func TestSubmit_ValidatesServiceFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), SubmitBookingRequest{
		ServiceType:     "consultation",
		Name:            "Asha",
		Phone:           "12345",
		ProblemCategory: "Career",
		PreferredSlot:   "midnight",
		DOB:             "1990-04-12",
		BirthTime:       "25:00",
		BirthState:      "Kerala",
	}, userU)

	require.ErrorIs(t, err, ErrValidationFailed)
	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "Phone")
	assert.Contains(t, fields, "BirthTime")

	_, err = f.svc.Submit(context.Background(), SubmitBookingRequest{
		ServiceType:     "consultation",
		Name:            "Asha",
		Phone:           "9876543210",
		ProblemCategory: "Career",
		PreferredSlot:   domain.PreferredSlots[1],
		DOB:             "1990-04-12",
		BirthTime:       "6:30 PM",
		BirthState:      "Kerala",
	}, userU)
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, FieldErrors{"DependentCategory": "oneof"}, fields)
}

func TestSubmit_PrefillsFromOwnFamilyProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fp := &domain.FamilyProfile{UserID: userU.ID, FullName: "Ravi", BirthDate: "2015-06-01", BirthTime: "9:15 AM", BirthPlace: "Goa"}
	require.NoError(t, f.families.Create(ctx, fp))

	req := SubmitBookingRequest{
		ServiceType:     "pooja",
		FamilyProfileID: fp.ID,
		Phone:           "9876543210",
		PoojaType:       "Griha Pravesh",
		PreferredSlot:   domain.PreferredSlots[0],
	}
	b, err := f.svc.Submit(ctx, req, userU)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", b.Name)
	assert.Equal(t, "2015-06-01", b.DOB)
	assert.Equal(t, "Goa", b.BirthState)
	assert.Equal(t, fp.ID, *b.FamilyProfileID)

	// another user's profile is invisible
	_, err = f.svc.Submit(ctx, req, userV)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Submit(ctx, req, domain.Actor{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestConfirmAndAssign_ClaimsAndEnriches(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.ServiceConsultation, userU)

	res, err := f.svc.ConfirmAndAssign(context.Background(), b.ID, astroP)
	require.NoError(t, err)
	assert.True(t, res.SummaryGenerated)
	assert.Equal(t, astroP.ID, *res.Booking.AssignedTo)
	assert.Equal(t, domain.BookingConfirmed, res.Booking.Status)
	require.NotNil(t, res.Booking.AISummary)
	assert.Equal(t, "Seeker asks about a career change.", *res.Booking.AISummary)
	assert.Equal(t, []string{"Should I change jobs this year?"}, f.sum.calls)
}

func TestConfirmAndAssign_EnrichmentFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.sum.err = errors.New("upstream 500")
	b := f.seed(t, domain.ServiceConsultation, userU)

	res, err := f.svc.ConfirmAndAssign(context.Background(), b.ID, astroP)
	require.NoError(t, err)
	assert.False(t, res.SummaryGenerated)
	assert.Nil(t, res.Booking.AISummary)
	assert.Equal(t, astroP.ID, *res.Booking.AssignedTo)
}

func TestConfirmAndAssign_EnrichmentTimeoutIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.sum.delay = time.Second
	f.svc.enrichTimeout = 20 * time.Millisecond
	b := f.seed(t, domain.ServicePooja, userU)

	res, err := f.svc.ConfirmAndAssign(context.Background(), b.ID, priest)
	require.NoError(t, err)
	assert.False(t, res.SummaryGenerated)
	assert.Nil(t, res.Booking.AISummary)
}

func TestConfirmAndAssign_SkipsWhenNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.sum.enabled = false
	b := f.seed(t, domain.ServiceConsultation, userU)

	res, err := f.svc.ConfirmAndAssign(context.Background(), b.ID, astroP)
	require.NoError(t, err)
	assert.False(t, res.SummaryGenerated)
	assert.Empty(t, f.sum.calls)
}

func TestConfirmAndAssign_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServiceConsultation, userU)

	_, err := f.svc.ConfirmAndAssign(ctx, "missing", astroP)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ConfirmAndAssign(ctx, b.ID, priest)
	assert.ErrorIs(t, err, ErrNotFound, "wrong service type resolves as not found")

	_, err = f.svc.ConfirmAndAssign(ctx, b.ID, userU)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.ConfirmAndAssign(ctx, b.ID, astroP)
	require.NoError(t, err)

	_, err = f.svc.ConfirmAndAssign(ctx, b.ID, astroQ)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestConfirmAndAssign_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	f.sum.enabled = false
	b := f.seed(t, domain.ServiceConsultation, userU)

	actors := []domain.Actor{astroP, astroQ}
	results := make([]*ConfirmResult, len(actors))
	errs := make([]error, len(actors))

	var wg sync.WaitGroup
	for i, a := range actors {
		wg.Add(1)
		go func(i int, a domain.Actor) {
			defer wg.Done()
			results[i], errs[i] = f.svc.ConfirmAndAssign(context.Background(), b.ID, a)
		}(i, a)
	}
	wg.Wait()

	winners := 0
	for i := range actors {
		if errs[i] == nil {
			winners++
			assert.Equal(t, actors[i].ID, *results[i].Booking.AssignedTo)
			continue
		}
		assert.ErrorIs(t, errs[i], ErrAlreadyAssigned)
	}
	assert.Equal(t, 1, winners)
}

func TestUpdateStatus_PoojaScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServicePooja, userU)

	updated, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, priest)
	require.NoError(t, err)
	assert.Equal(t, priest.ID, *updated.AssignedTo)
	assert.Equal(t, domain.BookingConfirmed, updated.Status)

	p2 := domain.Actor{ID: "priest-2", Role: domain.RolePriest}
	assert.False(t, CanClaim(p2, updated))

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingCompleted, p2)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingAccepted, astroP)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateStatus_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServiceConsultation, userU)

	_, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, userU)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingCompleted, astroP)
	assert.ErrorIs(t, err, ErrValidationFailed, "pending cannot jump to completed")

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingCancelled, astroP)
	assert.ErrorIs(t, err, ErrValidationFailed, "providers cannot cancel")

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingStatus("archived"), astroP)
	assert.ErrorIs(t, err, ErrValidationFailed)

	got, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingAssigned, astroP)
	require.NoError(t, err)
	assert.Equal(t, astroP.ID, *got.AssignedTo)

	for _, s := range []domain.BookingStatus{domain.BookingAccepted, domain.BookingCompleted} {
		got, err = f.svc.UpdateStatus(ctx, b.ID, s, astroP)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingAccepted, astroP)
	assert.ErrorIs(t, err, ErrValidationFailed, "completed is terminal")
}

func TestUpdateStatus_AdminOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServiceConsultation, userU)

	got, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingCompleted, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)

	got, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingPending, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, astroP)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, b.ID, domain.BookingPending, admin)
	assert.ErrorIs(t, err, ErrValidationFailed, "an assigned booking cannot return to pending")
}

func TestAssign_AdminReassigns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServicePooja, userU)

	_, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, priest)
	require.NoError(t, err)

	got, err := f.svc.Assign(ctx, b.ID, "priest-2", admin)
	require.NoError(t, err)
	assert.Equal(t, "priest-2", *got.AssignedTo)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	_, err = f.svc.Assign(ctx, b.ID, astroP.ID, admin)
	assert.ErrorIs(t, err, ErrValidationFailed, "an astrologer cannot hold a pooja")

	_, err = f.svc.Assign(ctx, b.ID, "priest-2", priest)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAssign_PendingBecomesAssigned(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, domain.ServiceConsultation, userU)

	got, err := f.svc.Assign(context.Background(), b.ID, astroQ.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingAssigned, got.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServiceConsultation, userU)

	_, err := f.svc.Cancel(ctx, b.ID, userV)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.Cancel(ctx, b.ID, astroP)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := f.svc.Cancel(ctx, b.ID, userU)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)

	again, err := f.svc.Cancel(ctx, b.ID, userU)
	require.NoError(t, err)
	assert.Equal(t, got.UpdatedAt, again.UpdatedAt)

	done := f.seed(t, domain.ServiceConsultation, userU)
	_, err = f.svc.UpdateStatus(ctx, done.ID, domain.BookingCompleted, admin)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, done.ID, userU)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestListFor_Shaping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.seed(t, domain.ServiceConsultation, userU)
	others := f.seed(t, domain.ServiceConsultation, userV)
	pooja := f.seed(t, domain.ServicePooja, userV)
	_, err := f.svc.ConfirmAndAssign(ctx, others.ID, astroP)
	require.NoError(t, err)

	res := f.svc.ListFor(ctx, userU)
	require.NoError(t, res.Err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, mine.ID, res.Bookings[0].ID)
	assert.False(t, res.Bookings[0].Redacted)

	res = f.svc.ListFor(ctx, astroQ)
	require.NoError(t, res.Err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, mine.ID, res.Bookings[0].ID)
	assert.True(t, res.Bookings[0].Redacted, "unclaimed rows are listed without details")

	res = f.svc.ListFor(ctx, astroP)
	assert.Len(t, res.Bookings, 2)

	res = f.svc.ListFor(ctx, priest)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, pooja.ID, res.Bookings[0].ID)

	res = f.svc.ListFor(ctx, admin)
	assert.Len(t, res.Bookings, 3)

	res = f.svc.ListFor(ctx, domain.Actor{ID: "x", Role: domain.Role("guru")})
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Bookings)

	res = f.svc.ListFor(ctx, domain.Actor{})
	assert.Empty(t, res.Bookings)
}

func TestVisibility_ExistenceLeakOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, domain.ServiceConsultation, userU)
	_, err := f.svc.UpdateStatus(ctx, b.ID, domain.BookingAssigned, astroP)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, b.ID, astroQ)
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := f.svc.Get(ctx, b.ID, astroP)
	require.NoError(t, err)
	assert.False(t, v.Redacted)
	assert.Equal(t, "Asha", v.Name)
}

// mockStore is used where the test must prove the store was not written.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *mockStore) Claim(ctx context.Context, id, actorID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, actorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockStore) Assign(ctx context.Context, id, providerID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockStore) SetSummary(ctx context.Context, id string, summary string) (*domain.Booking, error) {
	args := m.Called(ctx, id, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func TestUpdateStatus_SameStatusDoesNotWrite(t *testing.T) {
	store := new(mockStore)
	b := consultation("astro-p")
	b.Status = domain.BookingConfirmed
	store.On("GetByID", mock.Anything, "b1").Return(b, nil)

	svc := NewService(store, nil, fixedRoles{}, nil)

	for _, actor := range []domain.Actor{astroP, admin} {
		got, err := svc.UpdateStatus(context.Background(), "b1", domain.BookingConfirmed, actor)
		require.NoError(t, err)
		assert.Same(t, b, got)
	}
	store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_LostClaimRace(t *testing.T) {
	store := new(mockStore)
	store.On("GetByID", mock.Anything, "b1").Return(consultation(""), nil)
	store.On("Claim", mock.Anything, "b1", astroP.ID, domain.BookingPending, domain.BookingConfirmed).Return(nil, repository.ErrNoRowsAffected)

	svc := NewService(store, nil, fixedRoles{}, nil)
	_, err := svc.UpdateStatus(context.Background(), "b1", domain.BookingConfirmed, astroP)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)
}

func TestUpdateStatus_StaleStatusIsValidationFailure(t *testing.T) {
	store := new(mockStore)
	store.On("GetByID", mock.Anything, "b1").Return(consultation(""), nil)
	store.On("Claim", mock.Anything, "b1", astroP.ID, domain.BookingPending, domain.BookingConfirmed).Return(nil, repository.ErrStaleStatus)

	svc := NewService(store, nil, fixedRoles{}, nil)
	_, err := svc.UpdateStatus(context.Background(), "b1", domain.BookingConfirmed, astroP)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}

// interleavedStore runs between once, after the first read and before the
// caller gets to write.
type interleavedStore struct {
	*repository.BookingRepository
	between func()
	once    sync.Once
}

func (s *interleavedStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.BookingRepository.GetByID(ctx, id)
	s.once.Do(s.between)
	return b, err
}

func TestWritesRacingAConcurrentChange(t *testing.T) {
	cases := []struct {
		name    string
		svcType domain.ServiceType
		// between runs on the shared repository after the row was read
		between func(ctx context.Context, f *fixture, id string) error
		write   func(ctx context.Context, svc *Service, id string) error
		wantErr error
		want    domain.BookingStatus
		holder  string
	}{
		{
			name:    "confirm after requester cancelled",
			svcType: domain.ServiceConsultation,
			between: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.svc.Cancel(ctx, id, userU)
				return err
			},
			write: func(ctx context.Context, svc *Service, id string) error {
				_, err := svc.ConfirmAndAssign(ctx, id, astroP)
				return err
			},
			wantErr: ErrValidationFailed,
			want:    domain.BookingCancelled,
		},
		{
			name:    "provider update after requester cancelled",
			svcType: domain.ServicePooja,
			between: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.svc.Cancel(ctx, id, userU)
				return err
			},
			write: func(ctx context.Context, svc *Service, id string) error {
				_, err := svc.UpdateStatus(ctx, id, domain.BookingConfirmed, priest)
				return err
			},
			wantErr: ErrValidationFailed,
			want:    domain.BookingCancelled,
		},
		{
			name:    "admin assign after requester cancelled",
			svcType: domain.ServicePooja,
			between: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.svc.Cancel(ctx, id, userU)
				return err
			},
			write: func(ctx context.Context, svc *Service, id string) error {
				_, err := svc.Assign(ctx, id, "priest-2", admin)
				return err
			},
			wantErr: ErrValidationFailed,
			want:    domain.BookingCancelled,
		},
		{
			name:    "cancel after admin rejected",
			svcType: domain.ServiceConsultation,
			between: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.svc.UpdateStatus(ctx, id, domain.BookingRejected, admin)
				return err
			},
			write: func(ctx context.Context, svc *Service, id string) error {
				_, err := svc.Cancel(ctx, id, userU)
				return err
			},
			wantErr: ErrValidationFailed,
			want:    domain.BookingRejected,
		},
		{
			name:    "confirm after admin handed it to someone else",
			svcType: domain.ServiceConsultation,
			between: func(ctx context.Context, f *fixture, id string) error {
				_, err := f.svc.Assign(ctx, id, astroQ.ID, admin)
				return err
			},
			write: func(ctx context.Context, svc *Service, id string) error {
				_, err := svc.ConfirmAndAssign(ctx, id, astroP)
				return err
			},
			wantErr: ErrAlreadyAssigned,
			want:    domain.BookingAssigned,
			holder:  astroQ.ID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			b := f.seed(t, tc.svcType, userU)

			store := &interleavedStore{BookingRepository: f.repo}
			store.between = func() { require.NoError(t, tc.between(ctx, f, b.ID)) }
			svc := NewService(store, f.families, fixedRoles{"priest-2": domain.RolePriest}, f.sum)

			err := tc.write(ctx, svc, b.ID)
			assert.ErrorIs(t, err, tc.wantErr)

			got, err := f.repo.GetByID(ctx, b.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)
			if tc.holder == "" {
				assert.Nil(t, got.AssignedTo)
			} else {
				require.NotNil(t, got.AssignedTo)
				assert.Equal(t, tc.holder, *got.AssignedTo)
			}
			assert.Nil(t, got.AISummary)
		})
	}
}

func TestStoreFailures(t *testing.T) {
	store := new(mockStore)
	store.On("GetByID", mock.Anything, "b1").Return(nil, errors.New("connection refused"))
	store.On("GetByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)
	store.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := NewService(store, nil, fixedRoles{}, nil)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "b1", domain.BookingConfirmed, astroP)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	_, err = svc.Cancel(ctx, "gone", userU)
	assert.ErrorIs(t, err, ErrNotFound)

	res := svc.ListFor(ctx, astroP)
	assert.ErrorIs(t, res.Err, ErrUpstreamUnavailable)
	assert.NotNil(t, res.Bookings)
	assert.Empty(t, res.Bookings)
}

package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consultly/database/pubsub"
	"consultly/models"
	"consultly/utils"
)

type memAppointments struct {
	byID map[string]*models.Appointment
}

func (r *memAppointments) CreateWithClaims(ctx context.Context, apt *models.Appointment) error {
	return nil
}

func (r *memAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	apt, ok := r.byID[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "appointment", ID: id}
	}
	return apt, nil
}

func (r *memAppointments) ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Appointment, error) {
	return nil, nil
}

func (r *memAppointments) ListByParticipant(ctx context.Context, actorID string) ([]models.Appointment, error) {
	return nil, nil
}

func (r *memAppointments) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error {
	return nil
}

func (r *memAppointments) ReleaseClaims(ctx context.Context, appointmentID string) error {
	return nil
}

type memRooms struct {
	mu     sync.Mutex
	states map[models.ParticipantRole]models.ParticipantState
}

func (r *memRooms) Create(ctx context.Context, room *models.ConsultationRoom) error { return nil }

func (r *memRooms) GetByID(ctx context.Context, id string) (*models.ConsultationRoom, error) {
	return &models.ConsultationRoom{ID: id, Status: models.RoomActive}, nil
}

func (r *memRooms) TransitionStatus(ctx context.Context, id string, from, to models.RoomStatus, at time.Time) error {
	return nil
}

func (r *memRooms) SetParticipantState(ctx context.Context, roomID string, role models.ParticipantRole, state models.ParticipantState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states == nil {
		r.states = make(map[models.ParticipantRole]models.ParticipantState)
	}
	r.states[role] = state
	return nil
}

type memPresence struct {
	mu      sync.Mutex
	records map[string]models.PresenceRecord // roomID + "/" + participantID
}

func newMemPresence() *memPresence {
	return &memPresence{records: make(map[string]models.PresenceRecord)}
}

func (r *memPresence) Upsert(ctx context.Context, rec models.PresenceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.RoomID+"/"+rec.ParticipantID] = rec
	return nil
}

func (r *memPresence) Get(ctx context.Context, roomID, participantID string) (*models.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[roomID+"/"+participantID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memPresence) List(ctx context.Context, roomID string) ([]models.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PresenceRecord
	for _, rec := range r.records {
		if rec.RoomID == roomID {
			out = append(out, rec)
		}
	}
	return out, nil
}

const (
	testRoom     = "apt-1"
	testProvider = "prov-1"
	testClient   = "client-1"
)

func presenceFixture() (*DefaultPresenceService, *memPresence, *memRooms) {
	store := newMemPresence()
	rooms := &memRooms{}
	svc := &DefaultPresenceService{
		Appointments: &memAppointments{byID: map[string]*models.Appointment{
			testRoom: {ID: testRoom, ProviderID: testProvider, ClientID: testClient},
		}},
		Rooms:  rooms,
		Repo:   store,
		Broker: pubsub.NewMemoryBroker(),
	}
	return svc, store, rooms
}

func next(t *testing.T, sub *PresenceSubscription) models.PresenceRecord {
	t.Helper()
	select {
	case rec, ok := <-sub.C():
		if !ok {
			t.Fatal("presence stream closed")
		}
		return rec
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for presence event")
	}
	return models.PresenceRecord{}
}

func TestSetOnlineStoresRecord(t *testing.T) {
	svc, store, rooms := presenceFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, testRoom, testClient))

	rec, err := store.Get(ctx, testRoom, testClient)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Online)
	assert.False(t, rec.LastSeen.IsZero())

	// Mirrored into the room snapshot under the participant's role.
	rooms.mu.Lock()
	state, ok := rooms.states[models.RoleClient]
	rooms.mu.Unlock()
	require.True(t, ok)
	assert.True(t, state.Online)
}

func TestSetOnlineIsIdempotent(t *testing.T) {
	svc, store, _ := presenceFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, testRoom, testClient))
	require.NoError(t, svc.SetOnline(ctx, testRoom, testClient))
	require.NoError(t, svc.SetOnline(ctx, testRoom, testClient))

	rec, err := store.Get(ctx, testRoom, testClient)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Online)

	all, err := store.List(ctx, testRoom)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSetOfflineOverwrites(t *testing.T) {
	svc, store, _ := presenceFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, testRoom, testProvider))
	require.NoError(t, svc.SetOffline(ctx, testRoom, testProvider))

	rec, err := store.Get(ctx, testRoom, testProvider)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Online)
}

func TestSetRejectsNonParticipant(t *testing.T) {
	svc, store, _ := presenceFixture()

	err := svc.SetOnline(context.Background(), testRoom, "stranger")
	var authErr *utils.AuthorizationError
	require.ErrorAs(t, err, &authErr)

	all, listErr := store.List(context.Background(), testRoom)
	require.NoError(t, listErr)
	assert.Empty(t, all)
}

func TestSubscribeEmitsCurrentStateFirst(t *testing.T) {
	svc, _, _ := presenceFixture()
	ctx := context.Background()

	require.NoError(t, svc.SetOnline(ctx, testRoom, testProvider))

	sub, err := svc.Subscribe(ctx, testRoom, testClient)
	require.NoError(t, err)
	defer sub.Cancel()

	initial := next(t, sub)
	assert.Equal(t, testProvider, initial.ParticipantID)
	assert.True(t, initial.Online)
}

func TestSubscribeBeforeOtherEverConnected(t *testing.T) {
	svc, _, _ := presenceFixture()

	sub, err := svc.Subscribe(context.Background(), testRoom, testClient)
	require.NoError(t, err)
	defer sub.Cancel()

	initial := next(t, sub)
	assert.Equal(t, testProvider, initial.ParticipantID)
	assert.False(t, initial.Online)
	assert.True(t, initial.LastSeen.IsZero())
}

func TestSubscribeStreamsOtherParticipantOnly(t *testing.T) {
	svc, _, _ := presenceFixture()
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, testRoom, testClient)
	require.NoError(t, err)
	defer sub.Cancel()
	next(t, sub) // drain the initial snapshot

	// The subscriber's own updates never come back on this feed.
	require.NoError(t, svc.SetOnline(ctx, testRoom, testClient))
	require.NoError(t, svc.SetOnline(ctx, testRoom, testProvider))
	require.NoError(t, svc.SetOffline(ctx, testRoom, testProvider))

	first := next(t, sub)
	assert.Equal(t, testProvider, first.ParticipantID)
	assert.True(t, first.Online)

	second := next(t, sub)
	assert.Equal(t, testProvider, second.ParticipantID)
	assert.False(t, second.Online)
}

func TestSubscribeRejectsNonParticipant(t *testing.T) {
	svc, _, _ := presenceFixture()

	_, err := svc.Subscribe(context.Background(), testRoom, "stranger")
	var authErr *utils.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestSubscribeUnknownRoom(t *testing.T) {
	svc, _, _ := presenceFixture()

	_, err := svc.Subscribe(context.Background(), "missing", testClient)
	var notFound *utils.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCancelClosesPresenceStream(t *testing.T) {
	svc, _, _ := presenceFixture()

	sub, err := svc.Subscribe(context.Background(), testRoom, testClient)
	require.NoError(t, err)
	next(t, sub)

	sub.Cancel()
	sub.Cancel()

	select {
	case _, ok := <-sub.C():
		assert.False(t, ok, "stream should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
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
	mu   sync.Mutex
	byID map[string]*models.ConsultationRoom
}

func (r *memRooms) Create(ctx context.Context, room *models.ConsultationRoom) error { return nil }

func (r *memRooms) GetByID(ctx context.Context, id string) (*models.ConsultationRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.byID[id]
	if !ok {
		return nil, &utils.NotFoundError{Resource: "room", ID: id}
	}
	cp := *room
	return &cp, nil
}

func (r *memRooms) TransitionStatus(ctx context.Context, id string, from, to models.RoomStatus, at time.Time) error {
	return nil
}

func (r *memRooms) SetParticipantState(ctx context.Context, roomID string, role models.ParticipantRole, state models.ParticipantState) error {
	return nil
}

func (r *memRooms) setStatus(id string, status models.RoomStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].Status = status
}

type memMessages struct {
	mu   sync.Mutex
	seq  map[string]int64
	msgs map[string][]models.Message
}

func newMemMessages() *memMessages {
	return &memMessages{seq: make(map[string]int64), msgs: make(map[string][]models.Message)}
}

func (r *memMessages) NextSeq(ctx context.Context, roomID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[roomID]++
	return r.seq[roomID], nil
}

func (r *memMessages) Append(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs[msg.RoomID] = append(r.msgs[msg.RoomID], *msg)
	return nil
}

func (r *memMessages) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Message, len(r.msgs[roomID]))
	copy(out, r.msgs[roomID])
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

const (
	testRoom     = "apt-1"
	testProvider = "prov-1"
	testClient   = "client-1"
)

func chatFixture() (*DefaultChatService, *memRooms) {
	rooms := &memRooms{byID: map[string]*models.ConsultationRoom{
		testRoom: {ID: testRoom, Status: models.RoomActive},
	}}
	svc := &DefaultChatService{
		Appointments: &memAppointments{byID: map[string]*models.Appointment{
			testRoom: {ID: testRoom, ProviderID: testProvider, ClientID: testClient},
		}},
		Rooms:    rooms,
		Messages: newMemMessages(),
		Broker:   pubsub.NewMemoryBroker(),
	}
	return svc, rooms
}

// collect drains n messages from a subscription, failing the test on timeout.
func collect(t *testing.T, sub *MessageSubscription, n int) []models.Message {
	t.Helper()
	out := make([]models.Message, 0, n)
	for len(out) < n {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				t.Fatalf("stream closed after %d of %d messages", len(out), n)
			}
			out = append(out, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d messages", len(out), n)
		}
	}
	return out
}

func TestPublishRequiresActiveRoom(t *testing.T) {
	svc, rooms := chatFixture()
	ctx := context.Background()

	for _, status := range []models.RoomStatus{models.RoomReady, models.RoomEnded} {
		rooms.setStatus(testRoom, status)
		_, err := svc.Publish(ctx, testRoom, testClient, "hello")
		var inactive *utils.RoomNotActiveError
		require.ErrorAs(t, err, &inactive, "status %s", status)
		assert.Equal(t, string(status), inactive.Status)
	}

	// Nothing was persisted by the rejected publishes.
	backlog, err := svc.Messages.ListByRoom(ctx, testRoom)
	require.NoError(t, err)
	assert.Empty(t, backlog)
}

func TestPublishRejectsEmptyContent(t *testing.T) {
	svc, _ := chatFixture()

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := svc.Publish(context.Background(), testRoom, testClient, content)
		var verr *utils.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestPublishRequiresParticipant(t *testing.T) {
	svc, _ := chatFixture()

	_, err := svc.Publish(context.Background(), testRoom, "stranger", "hello")
	var authErr *utils.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestPublishAssignsRoles(t *testing.T) {
	svc, _ := chatFixture()
	ctx := context.Background()

	fromClient, err := svc.Publish(ctx, testRoom, testClient, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, fromClient.SenderRole)

	fromProvider, err := svc.Publish(ctx, testRoom, testProvider, "hello")
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, fromProvider.SenderRole)
}

func TestSystemNoticeBypassesActiveGate(t *testing.T) {
	svc, rooms := chatFixture()
	ctx := context.Background()

	rooms.setStatus(testRoom, models.RoomEnded)
	msg, err := svc.PublishSystemNotice(ctx, testRoom, "Session ended.")
	require.NoError(t, err)
	assert.Equal(t, models.MessageSystemNotice, msg.Kind)
	assert.Equal(t, models.RoleSystem, msg.SenderRole)
}

func TestSubscribeReplaysBacklogThenTailsLive(t *testing.T) {
	svc, _ := chatFixture()
	ctx := context.Background()

	_, err := svc.PublishSystemNotice(ctx, testRoom, "Session started.")
	require.NoError(t, err)
	_, err = svc.Publish(ctx, testRoom, testClient, "hello")
	require.NoError(t, err)

	sub, err := svc.Subscribe(ctx, testRoom)
	require.NoError(t, err)
	defer sub.Cancel()

	backlog := collect(t, sub, 2)
	assert.Equal(t, "Session started.", backlog[0].Content)
	assert.Equal(t, models.MessageSystemNotice, backlog[0].Kind)
	assert.Equal(t, "hello", backlog[1].Content)

	// Live tail picks up what is published after attach.
	_, err = svc.Publish(ctx, testRoom, testProvider, "hi there")
	require.NoError(t, err)
	live := collect(t, sub, 1)
	assert.Equal(t, "hi there", live[0].Content)
}

func TestResubscribeReplaysFullBacklog(t *testing.T) {
	svc, _ := chatFixture()
	ctx := context.Background()

	_, err := svc.Publish(ctx, testRoom, testClient, "one")
	require.NoError(t, err)

	first, err := svc.Subscribe(ctx, testRoom)
	require.NoError(t, err)
	collect(t, first, 1)
	first.Cancel()

	_, err = svc.Publish(ctx, testRoom, testProvider, "two")
	require.NoError(t, err)

	second, err := svc.Subscribe(ctx, testRoom)
	require.NoError(t, err)
	defer second.Cancel()

	replay := collect(t, second, 2)
	assert.Equal(t, "one", replay[0].Content)
	assert.Equal(t, "two", replay[1].Content)
}

func TestAllObserversSeeSameOrder(t *testing.T) {
	svc, _ := chatFixture()
	ctx := context.Background()

	var subs []*MessageSubscription
	for i := 0; i < 3; i++ {
		sub, err := svc.Subscribe(ctx, testRoom)
		require.NoError(t, err)
		defer sub.Cancel()
		subs = append(subs, sub)
	}

	contents := []string{"a", "b", "c", "d", "e"}
	for _, content := range contents {
		_, err := svc.Publish(ctx, testRoom, testClient, content)
		require.NoError(t, err)
	}

	for _, sub := range subs {
		got := collect(t, sub, len(contents))
		for i, msg := range got {
			assert.Equal(t, contents[i], msg.Content)
		}
		// Seq strictly increases along the stream.
		for i := 1; i < len(got); i++ {
			assert.Greater(t, got[i].Seq, got[i-1].Seq)
		}
	}
}

func TestSubscribeDeliversMessageLandingInBacklogGap(t *testing.T) {
	svc, _ := chatFixture()
	ctx := context.Background()

	// A publisher paused between seq allocation and insert leaves a gap: the
	// store holds seqs 1 and 3 while seq 2 is still in flight.
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for _, seq := range []int64{1, 3} {
		require.NoError(t, svc.Messages.Append(ctx, &models.Message{
			ID:         uuid.New().String(),
			RoomID:     testRoom,
			SenderID:   testClient,
			SenderRole: models.RoleClient,
			Content:    fmt.Sprintf("msg-%d", seq),
			Kind:       models.MessageText,
			Timestamp:  base.Add(time.Duration(seq) * time.Second),
			Seq:        seq,
		}))
	}

	sub, err := svc.Subscribe(ctx, testRoom)
	require.NoError(t, err)
	defer sub.Cancel()

	backlog := collect(t, sub, 2)
	assert.Equal(t, int64(1), backlog[0].Seq)
	assert.Equal(t, int64(3), backlog[1].Seq)

	// The delayed publish now completes: insert plus broadcast, exactly as a
	// live publish does.
	gapMsg := &models.Message{
		ID:         uuid.New().String(),
		RoomID:     testRoom,
		SenderID:   testProvider,
		SenderRole: models.RoleProvider,
		Content:    "msg-2",
		Kind:       models.MessageText,
		Timestamp:  base.Add(2 * time.Second),
		Seq:        2,
	}
	require.NoError(t, svc.Messages.Append(ctx, gapMsg))
	payload, err := json.Marshal(gapMsg)
	require.NoError(t, err)
	require.NoError(t, svc.Broker.Publish(ctx, messageTopic(testRoom), payload))

	late := collect(t, sub, 1)
	assert.Equal(t, int64(2), late[0].Seq)
	assert.Equal(t, "msg-2", late[0].Content)
}

func TestCancelClosesStream(t *testing.T) {
	svc, _ := chatFixture()

	sub, err := svc.Subscribe(context.Background(), testRoom)
	require.NoError(t, err)

	sub.Cancel()
	// Cancel is idempotent.
	sub.Cancel()

	select {
	case _, ok := <-sub.C():
		assert.False(t, ok, "stream should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestSubscribeUnknownRoom(t *testing.T) {
	svc, _ := chatFixture()

	_, err := svc.Subscribe(context.Background(), "missing")
	var notFound *utils.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHistoryReadableAfterEnd(t *testing.T) {
	svc, rooms := chatFixture()
	ctx := context.Background()

	_, err := svc.Publish(ctx, testRoom, testClient, "hello")
	require.NoError(t, err)

	rooms.setStatus(testRoom, models.RoomEnded)
	_, err = svc.PublishSystemNotice(ctx, testRoom, "Session ended.")
	require.NoError(t, err)

	sub, err := svc.Subscribe(ctx, testRoom)
	require.NoError(t, err)
	defer sub.Cancel()

	history := collect(t, sub, 2)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "Session ended.", history[1].Content)
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/testutil"
	"github.com/watchroom/client-go/internal/types"
)

func validDraft() *types.RoomDraft {
	return &types.RoomDraft{
		Name:      "Sync",
		Videos:    []types.Video{{Title: "Talk", URL: "https://example.com/v"}},
		StartTime: "2024-01-01T10:00",
		EndTime:   "2024-01-01T11:00",
	}
}

func TestValidateDraft(t *testing.T) {
	tcases := []struct {
		name     string
		mutate   func(d *types.RoomDraft)
		expected error
	}{
		{
			name:     "valid draft",
			mutate:   func(d *types.RoomDraft) {},
			expected: nil,
		},
		{
			name:     "no videos",
			mutate:   func(d *types.RoomDraft) { d.Videos = nil },
			expected: ErrNoVideos,
		},
		{
			name: "empty title",
			mutate: func(d *types.RoomDraft) {
				d.Videos = []types.Video{{Title: "", URL: "https://example.com/v"}}
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "non-http scheme",
			mutate: func(d *types.RoomDraft) {
				d.Videos = []types.Video{{Title: "Talk", URL: "ftp://example.com/v"}}
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "missing scheme",
			mutate: func(d *types.RoomDraft) {
				d.Videos = []types.Video{{Title: "Talk", URL: "example.com/v"}}
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "url with whitespace",
			mutate: func(d *types.RoomDraft) {
				d.Videos = []types.Video{{Title: "Talk", URL: "https://example.com/a b"}}
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "bad url fails regardless of title",
			mutate: func(d *types.RoomDraft) {
				d.Videos = []types.Video{{Title: "Perfectly Good Title", URL: "not-a-url"}}
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "one bad video among good ones",
			mutate: func(d *types.RoomDraft) {
				d.Videos = append(d.Videos, types.Video{Title: "Other", URL: "nope"})
			},
			expected: ErrInvalidVideos,
		},
		{
			name: "end before start",
			mutate: func(d *types.RoomDraft) {
				d.StartTime = "2024-01-01T11:00"
				d.EndTime = "2024-01-01T10:00"
			},
			expected: ErrTimeOrder,
		},
		{
			name: "equal start and end",
			mutate: func(d *types.RoomDraft) {
				d.EndTime = d.StartTime
			},
			expected: ErrTimeOrder,
		},
		{
			name: "unparseable times are ignored",
			mutate: func(d *types.RoomDraft) {
				d.StartTime = "whenever"
				d.EndTime = ""
			},
			expected: nil,
		},
		{
			name: "rfc3339 timestamps accepted",
			mutate: func(d *types.RoomDraft) {
				d.StartTime = "2024-01-01T10:00:00Z"
				d.EndTime = "2024-01-01T11:00:00Z"
			},
			expected: nil,
		},
	}

	dir := newRoomDirectory(testutil.Logger(t), &gateway.MockGateway{}, true, true)

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(draft)

			err := dir.ValidateDraft(draft)
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestValidateDraftConfigurableRules(t *testing.T) {
	// Both checks off: mirrors the lax legacy form variant.
	dir := newRoomDirectory(testutil.Logger(t), &gateway.MockGateway{}, false, false)

	draft := validDraft()
	draft.Videos = []types.Video{{Title: "Talk", URL: "not-a-url"}}
	draft.StartTime = "2024-01-01T11:00"
	draft.EndTime = "2024-01-01T10:00"

	assert.NoError(t, dir.ValidateDraft(draft))

	draft.Videos = []types.Video{{Title: "", URL: "not-a-url"}}
	assert.ErrorIs(t, dir.ValidateDraft(draft), ErrInvalidVideos,
		"the title rule is not configurable")
}

func TestCreateForcesOwner(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	mockGw.On("CreateRoom", mock.Anything, mock.MatchedBy(func(d types.RoomDraft) bool {
		return d.Owner == "u1"
	})).Return(types.Room{ID: "r1", Name: "Sync", Owner: "u1"}, nil).Once()

	draft := validDraft()
	draft.Owner = "intruder"

	room, err := dir.Create(context.Background(), draft, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", room.Owner)
}

func TestCreateAppendsServerRecord(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	canonical := types.Room{
		ID:     "r1",
		Name:   "Sync",
		Owner:  "u1",
		Videos: []types.Video{{Title: "Talk", URL: "https://example.com/v"}},
	}
	mockGw.On("CreateRoom", mock.Anything, mock.Anything).Return(canonical, nil).Once()

	room, err := dir.Create(context.Background(), validDraft(), "u1")
	require.NoError(t, err)
	assert.Equal(t, canonical, room)

	rooms := dir.List()
	require.Len(t, rooms, 1, "exactly one record appended")
	assert.Equal(t, canonical, rooms[0])
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	mockGw.On("CreateRoom", mock.Anything, mock.Anything).
		Return(types.Room{}, errors.New("boom")).Once()

	_, err := dir.Create(context.Background(), validDraft(), "u1")
	assert.ErrorIs(t, err, ErrCreateRoom, "server failures surface as the generic message")
	assert.Empty(t, dir.List())
}

func TestCreateInvalidDraftNeverSubmits(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	draft := validDraft()
	draft.Videos = nil

	_, err := dir.Create(context.Background(), draft, "u1")
	assert.ErrorIs(t, err, ErrNoVideos)
	assert.Empty(t, dir.List())
	mockGw.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestCreateRequiresOwner(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	_, err := dir.Create(context.Background(), validDraft(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	mockGw.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestCreateInFlightGuard(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	started := make(chan struct{})
	release := make(chan struct{})
	mockGw.On("CreateRoom", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(types.Room{ID: "r1"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := dir.Create(context.Background(), validDraft(), "u1")
		done <- err
	}()

	<-started
	_, err := dir.Create(context.Background(), validDraft(), "u1")
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, dir.List(), 1, "only the first submission lands")
}

func TestStoreCreateRoomUsesSessionOwner(t *testing.T) {
	s, mockGw, _ := newTestStore(t)
	defer mockGw.AssertExpectations(t)

	mockGw.On("Login", mock.Anything, "u@example.com", "secret").Return(gateway.LoginResponse{
		User:  types.Identity{Email: "u@example.com", UserID: "u1"},
		Token: "tok-123",
	}, nil).Once()
	mockGw.On("CreateRoom", mock.Anything, mock.MatchedBy(func(d types.RoomDraft) bool {
		return d.Owner == "u1"
	})).Return(types.Room{ID: "r1", Owner: "u1"}, nil).Once()

	_, err := s.Session.Login(context.Background(), "u@example.com", "secret")
	require.NoError(t, err)

	draft := validDraft()
	draft.Owner = "someone-else"

	room, err := s.CreateRoom(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "u1", room.Owner)
}

func TestStoreCreateRoomRequiresSession(t *testing.T) {
	s, mockGw, _ := newTestStore(t)

	_, err := s.CreateRoom(context.Background(), validDraft())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	mockGw.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestNewDraft(t *testing.T) {
	draft := NewDraft("u1")

	assert.Equal(t, "u1", draft.Owner)
	require.Len(t, draft.Videos, 1, "the form starts with one blank slot")
	assert.Empty(t, draft.Videos[0].Title)
	assert.NotEmpty(t, draft.LocalID)
}

func TestAddVideoSlot(t *testing.T) {
	draft := NewDraft("u1")

	AddVideoSlot(draft)
	AddVideoSlot(draft)

	assert.Len(t, draft.Videos, 3)
	assert.Equal(t, types.Video{}, draft.Videos[2])
}

func TestSetParticipants(t *testing.T) {
	tcases := []struct {
		name      string
		selection []string
		expected  []string
	}{
		{
			name:      "single identifier",
			selection: []string{"u2"},
			expected:  []string{"u2"},
		},
		{
			name:      "multi select",
			selection: []string{"u2", "u3", "u4"},
			expected:  []string{"u2", "u3", "u4"},
		},
		{
			name:      "legacy comma-joined string",
			selection: []string{"u2, u3,u4"},
			expected:  []string{"u2", "u3", "u4"},
		},
		{
			name:      "duplicates collapse",
			selection: []string{"u2", "u2,u3", "u3"},
			expected:  []string{"u2", "u3"},
		},
		{
			name:      "empty selection clears",
			selection: nil,
			expected:  []string{},
		},
		{
			name:      "blank entries dropped",
			selection: []string{"", " , ,u2"},
			expected:  []string{"u2"},
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			draft := NewDraft("u1")
			draft.Participants = []string{"stale"}

			SetParticipants(draft, tc.selection...)
			assert.Equal(t, tc.expected, draft.Participants)
		})
	}
}

func TestRoomsRefresh(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	first := []types.Room{{ID: "r1"}, {ID: "r2"}}
	second := []types.Room{{ID: "r3"}}
	mockGw.On("ListRooms", mock.Anything).Return(first, nil).Once()
	mockGw.On("ListRooms", mock.Anything).Return(second, nil).Once()

	require.NoError(t, dir.Refresh(context.Background()))
	require.NoError(t, dir.Refresh(context.Background()))

	assert.Equal(t, second, dir.List(), "refresh replaces, never merges")
}

func TestRoomsRefreshFailureKeepsCache(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	rooms := []types.Room{{ID: "r1"}}
	mockGw.On("ListRooms", mock.Anything).Return(rooms, nil).Once()
	mockGw.On("ListRooms", mock.Anything).Return(nil, errors.New("boom")).Once()

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Error(t, dir.Refresh(context.Background()))
	assert.Equal(t, rooms, dir.List())
}

func TestVideosForRoom(t *testing.T) {
	mockGw := &gateway.MockGateway{}
	defer mockGw.AssertExpectations(t)
	dir := newRoomDirectory(testutil.Logger(t), mockGw, true, true)

	videos := []types.Video{{Title: "Talk", URL: "https://example.com/v"}}
	mockGw.On("ListRooms", mock.Anything).
		Return([]types.Room{{ID: "r1", Videos: videos}}, nil).Once()
	require.NoError(t, dir.Refresh(context.Background()))

	assert.Equal(t, videos, dir.VideosForRoom("r1"))
	assert.Empty(t, dir.VideosForRoom("missing"), "unknown id yields an empty sequence")
	assert.NotNil(t, dir.VideosForRoom("missing"))
}

package store

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/teris-io/shortid"
	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/types"
)

var (
	// ErrNoVideos fails a draft with an empty video list.
	ErrNoVideos = errors.New("a room needs at least one video")

	// ErrInvalidVideos is the aggregated validation failure: some video is
	// missing a title or has a malformed URL. Deliberately does not say
	// which one; the form highlights the whole section.
	ErrInvalidVideos = errors.New("every video needs a title and a valid http(s) url")

	// ErrTimeOrder fails a draft whose window ends before it starts.
	ErrTimeOrder = errors.New("start time must be before end time")
)

var videoURLPattern = regexp.MustCompile(`^(https?://[^\s$.?#].[^\s]*)$`)

// timeLayouts are the accepted draft timestamp formats: the HTML
// datetime-local shape the forms produce, plus RFC 3339.
var timeLayouts = []string{"2006-01-02T15:04", time.RFC3339}

// NewDraft builds an empty draft for the given owner with a single blank
// video slot, the way the create-room form starts out. The local id only
// correlates log lines until the server assigns a canonical one.
func NewDraft(owner string) *types.RoomDraft {
	localID, err := shortid.Generate()
	if err != nil {
		localID = ""
	}

	return &types.RoomDraft{
		LocalID: localID,
		Owner:   owner,
		Videos:  []types.Video{{}},
	}
}

// AddVideoSlot appends one empty video entry to the draft.
func AddVideoSlot(d *types.RoomDraft) {
	d.Videos = append(d.Videos, types.Video{})
}

// SetParticipants replaces the draft's participants with the selection.
// Both selection shapes are accepted: individual identifiers, or legacy
// comma-joined strings from the single-field form. Entries are trimmed
// and de-duplicated, order preserved.
func SetParticipants(d *types.RoomDraft, selection ...string) {
	seen := make(map[string]struct{})
	participants := make([]string, 0, len(selection))

	for _, sel := range selection {
		for _, id := range strings.Split(sel, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			participants = append(participants, id)
		}
	}

	d.Participants = participants
}

// RoomDirectory owns the in-memory room collection and the create-room
// workflow. Rooms are never mutated or removed client-side; the directory
// only appends server-acknowledged records or replaces the set wholesale.
type RoomDirectory struct {
	mu       sync.Mutex
	rooms    []types.Room
	inFlight bool

	gw               gateway.API
	log              *log.Logger
	validateURLs     bool
	enforceTimeOrder bool
}

func newRoomDirectory(logger *log.Logger, gw gateway.API, validateURLs, enforceTimeOrder bool) *RoomDirectory {
	return &RoomDirectory{
		gw:               gw,
		log:              logger,
		validateURLs:     validateURLs,
		enforceTimeOrder: enforceTimeOrder,
	}
}

// ValidateDraft checks a draft's contents without side effects. A failing
// draft yields a single aggregated error.
func (d *RoomDirectory) ValidateDraft(draft *types.RoomDraft) error {
	if len(draft.Videos) == 0 {
		return ErrNoVideos
	}

	for _, v := range draft.Videos {
		if v.Title == "" {
			return ErrInvalidVideos
		}
		if d.validateURLs && !videoURLPattern.MatchString(v.URL) {
			return ErrInvalidVideos
		}
	}

	if d.enforceTimeOrder {
		if err := checkTimeOrder(draft.StartTime, draft.EndTime); err != nil {
			return err
		}
	}

	return nil
}

func checkTimeOrder(start, end string) error {
	st, ok1 := parseDraftTime(start)
	et, ok2 := parseDraftTime(end)
	if !ok1 || !ok2 {
		// Unparseable or absent timestamps are the server's problem;
		// the ordering rule only applies to well-formed windows.
		return nil
	}
	if !st.Before(et) {
		return ErrTimeOrder
	}
	return nil
}

func parseDraftTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Create submits a validated draft and appends the canonical record the
// server returns. The owner always overrides whatever the draft carried.
// Server failures surface as a generic error; details go to the log and
// the collection stays untouched.
func (d *RoomDirectory) Create(ctx context.Context, draft *types.RoomDraft, owner string) (types.Room, error) {
	if owner == "" {
		return types.Room{}, ErrNotAuthenticated
	}
	if err := d.ValidateDraft(draft); err != nil {
		return types.Room{}, err
	}

	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return types.Room{}, ErrOperationInFlight
	}
	d.inFlight = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inFlight = false
		d.mu.Unlock()
	}()

	submission := *draft
	submission.Owner = owner

	room, err := d.gw.CreateRoom(ctx, submission)
	if err != nil {
		d.log.Printf("create room %q: %v", draft.LocalID, err)
		return types.Room{}, ErrCreateRoom
	}

	d.mu.Lock()
	d.rooms = append(d.rooms, room)
	d.mu.Unlock()

	return room, nil
}

// Refresh replaces the whole collection with the server's room list.
// Failure keeps the last-known-good collection.
func (d *RoomDirectory) Refresh(ctx context.Context) error {
	rooms, err := d.gw.ListRooms(ctx)
	if err != nil {
		d.log.Printf("refresh rooms: %v", err)
		return err
	}

	d.mu.Lock()
	d.rooms = rooms
	d.mu.Unlock()
	return nil
}

// List returns a copy of the room collection.
func (d *RoomDirectory) List() []types.Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	rooms := make([]types.Room, len(d.rooms))
	copy(rooms, d.rooms)
	return rooms
}

// VideosForRoom returns the videos of the given room, or an empty sequence
// when the id is unknown. Never errors.
func (d *RoomDirectory) VideosForRoom(id string) []types.Video {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, room := range d.rooms {
		if room.ID == id {
			videos := make([]types.Video, len(room.Videos))
			copy(videos, room.Videos)
			return videos
		}
	}
	return []types.Video{}
}

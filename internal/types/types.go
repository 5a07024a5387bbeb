package types

// Identity is the signed-in principal as returned by the auth endpoints.
// It is a narrower record than User and the two must not be conflated:
// Identity describes who is signed in, User is a directory entry used to
// populate participant pickers.
type Identity struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Video struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RoomDraft is an unsaved room under construction. LocalID is a client-side
// correlation id only and never goes over the wire.
type RoomDraft struct {
	LocalID      string   `json:"-"`
	Name         string   `json:"name"`
	Owner        string   `json:"owner"`
	Videos       []Video  `json:"videos"`
	Participants []string `json:"participants"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
}

// Room is the canonical, server-acknowledged record. The server assigns
// the identifier; clients never fabricate one.
type Room struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Owner        string   `json:"owner"`
	Videos       []Video  `json:"videos"`
	Participants []string `json:"participants"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
}

package ludora

import "encoding/json"

// ============================================================================
// Shared Types
// ============================================================================

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// APIResult is the generic API response envelope.
type APIResult struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Meta  map[string]any  `json:"meta,omitempty"`
	Error *APIError       `json:"error,omitempty"`
}

// Decode unmarshals the Data field into the provided type.
func (r *APIResult) Decode(v interface{}) error {
	if r.Data == nil {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// PaginationOptions limits list responses.
type PaginationOptions struct {
	Limit  int
	Offset int
}

// ============================================================================
// Platform Types
// ============================================================================

// Game is a catalog entry for a playable game.
type Game struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subject     string         `json:"subject,omitempty"`
	GradeLevel  string         `json:"gradeLevel,omitempty"`
	Description string         `json:"description,omitempty"`
	Published   bool           `json:"published"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// Lobby is a live game lobby.
type Lobby struct {
	ID        string        `json:"id"`
	GameID    string        `json:"gameId"`
	HostID    string        `json:"hostId"`
	State     string        `json:"state"` // "waiting", "running", "finished"
	Members   []LobbyMember `json:"members,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

// LobbyMember is a participant in a lobby.
type LobbyMember struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"` // "host", "player", "spectator"
	JoinedAt    string `json:"joinedAt,omitempty"`
}

// PolledEvent is one event returned by the polling endpoint.
type PolledEvent struct {
	Seq       int64           `json:"seq"`
	EventType string          `json:"eventType"`
	Channel   string          `json:"channel,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	At        string          `json:"at"`
}

// EventsPage is the response from the event polling endpoint.
type EventsPage struct {
	Events  []PolledEvent `json:"events"`
	Cursor  int64         `json:"cursor"`
	HasMore bool          `json:"hasMore"`
}

// HealthInfo is the platform health payload.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  int64  `json:"uptime,omitempty"`
}

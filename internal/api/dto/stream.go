package dto

// StreamMessage is a frame sent by the client on the session stream.
type StreamMessage struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// StreamEvent is a frame sent by the server. Session is set for "session"
// frames; Accepted or Error for "position" replies.
type StreamEvent struct {
	Type     string           `json:"type"`
	Session  *SessionResponse `json:"session,omitempty"`
	Accepted *bool            `json:"accepted,omitempty"`
	Error    string           `json:"error,omitempty"`
}

package api

// MessageRequest is the HTTP request body for POST /agent/message (§6.1).
type MessageRequest struct {
	Text             string `json:"text"`
	UserID           string `json:"user_id"`
	SessionID        string `json:"session_id,omitempty"`
	SelectedEntityID *int64 `json:"selected_entity_id,omitempty"`
	CurrentPage      string `json:"current_page"`
	FromImage        bool   `json:"from_image,omitempty"`
}

// ConfirmRequest is the HTTP request body for POST /agent/confirm (§6.1).
type ConfirmRequest struct {
	SessionID string `json:"session_id"`
	Confirmed bool   `json:"confirmed"`
	UserID    string `json:"user_id"`
}

package room_dto

// Payloads of inbound socket events. Missing usernames or rooms are treated
// as "ignore the event", never as an error.

type JoinPayload struct {
	Username  string `json:"username"`
	Room      string `json:"room"`
	PublicKey string `json:"publicKey,omitempty"`
}

type LeavePayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type SeenPayload struct {
	ID string `json:"id"`
}

type TypingPayload struct {
	Room string `json:"room"`
}

type SendMessagePayload struct {
	Room           string            `json:"room"`
	Envelope       map[string]string `json:"encrypted_map"`
	Plaintext      string            `json:"plaintext,omitempty"`
	ExpiresAtMs    *int64            `json:"expires_at,omitempty"`
	DeleteOnRead   bool              `json:"delete_on_read,omitempty"`
	RequireAllRead bool              `json:"require_all_read,omitempty"`
	FileURL        string            `json:"fileUrl,omitempty"`
	FileName       string            `json:"fileName,omitempty"`
}

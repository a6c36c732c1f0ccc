package room_dto

type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type RoomUsersResponse struct {
	Users []string `json:"users"`
}

type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

type ReactionItem struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

type ReactionsResponse struct {
	Reactions []ReactionItem `json:"reactions"`
	Count     int64          `json:"count"`
}

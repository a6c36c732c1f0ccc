package room_dto

type EditMessageRequest struct {
	Envelope map[string]string `json:"encrypted_map" validate:"required,min=1"`
}

type ReactRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Emoji  string `json:"emoji" validate:"required"`
}

type ChunkUploadRequest struct {
	FileID     string `json:"fileId" validate:"required"`
	Filename   string `json:"filename" validate:"required"`
	ChunkIndex int    `json:"chunkIndex"`
	IV         string `json:"iv" validate:"required"`
	Chunk      string `json:"chunk" validate:"required"`
}

type CompleteUploadRequest struct {
	FileID   string `json:"fileId" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

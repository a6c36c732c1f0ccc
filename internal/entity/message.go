package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message is the durable record owned by the message store. The envelope is
// an opaque per-recipient ciphertext map; the engine never looks inside it.
type Message struct {
	ID             bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Room           string            `bson:"room" json:"room"`
	Author         string            `bson:"author" json:"author"`
	Envelope       map[string]string `bson:"envelope" json:"encrypted_map"`
	FileURL        string            `bson:"file_url,omitempty" json:"file_url,omitempty"`
	FileName       string            `bson:"file_name,omitempty" json:"file_name,omitempty"`
	CreatedAt      time.Time         `bson:"created_at" json:"timestamp"`
	ExpiresAt      *time.Time        `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Delivered      bool              `bson:"delivered" json:"delivered"`
	Read           bool              `bson:"read" json:"read"`
	Readers        []string          `bson:"readers" json:"readers"`
	DeleteOnRead   bool              `bson:"delete_on_read" json:"delete_on_read"`
	RequireAllRead bool              `bson:"require_all_read" json:"require_all_read"`
}

// HasReader reports whether username already acknowledged the message.
func (m *Message) HasReader(username string) bool {
	for _, r := range m.Readers {
		if r == username {
			return true
		}
	}
	return false
}

package obituary

import "time"

// Obituary is a generated memorial record. The owner is fixed at creation and
// never changes. Media URLs stay empty when the corresponding enrichment
// collaborator failed; the record itself is still durable.
type Obituary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date"`
	DeathDate string    `json:"death_date"`
	Text      string    `json:"obituary_text"`
	ImageURL  string    `json:"image_url,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
	Public    bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

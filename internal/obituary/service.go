package obituary

import (
	"context"
	"strings"
	"time"

	"thelastshow.org/internal/ids"
	"thelastshow.org/internal/obs"
)

// TextGenerator produces the obituary paragraph. Implementations never fail:
// when the remote model is unreachable they fall back to a deterministic
// template, so the contract is a plain string.
type TextGenerator interface {
	Obituary(ctx context.Context, name, birthDate, deathDate string) string
}

// ImageUploader stores a photo and returns its public URL. An error means the
// enrichment is skipped, not that the request fails.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// SpeechSynthesizer renders the obituary text to audio and returns its URL.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, obituaryID string) (string, error)
}

// Service orchestrates obituary creation and access. Collaborator failures
// degrade to absent media; only the store is load-bearing.
type Service struct {
	store  Store
	writer TextGenerator
	images ImageUploader
	speech SpeechSynthesizer
	now    func() time.Time
}

// NewService constructs a Service. images and speech may be nil when the
// corresponding collaborator is not configured.
func NewService(store Store, writer TextGenerator, images ImageUploader, speech SpeechSynthesizer) *Service {
	return &Service{
		store:  store,
		writer: writer,
		images: images,
		speech: speech,
		now:    time.Now,
	}
}

// CreateInput carries the owner-provided fields for a new obituary.
type CreateInput struct {
	Name      string
	BirthDate string
	DeathDate string
	Public    bool
	ImageData []byte
	ImageName string
}

// Create generates the text, uploads the photo if one was provided, persists
// the record, and then attaches synthesized audio. The record is inserted
// before the audio call, so a failed synthesis leaves a valid record with an
// empty audio URL rather than rolling anything back.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Obituary, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.BirthDate == "" || in.DeathDate == "" {
		return nil, ErrInvalidInput
	}

	text := s.writer.Obituary(ctx, name, in.BirthDate, in.DeathDate)

	var imageURL string
	if len(in.ImageData) > 0 && s.images != nil {
		url, err := s.images.Upload(ctx, in.ImageData, in.ImageName)
		if err != nil {
			obs.CollaboratorFailure("image_upload")
			obs.LogEvent("warn", "image upload degraded", map[string]any{
				"filename": in.ImageName,
				"error":    err.Error(),
			})
		} else {
			imageURL = url
		}
	}

	o := &Obituary{
		ID:        ids.New(),
		UserID:    ownerID,
		Name:      name,
		BirthDate: in.BirthDate,
		DeathDate: in.DeathDate,
		Text:      text,
		ImageURL:  imageURL,
		Public:    in.Public,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Insert(ctx, o); err != nil {
		return nil, err
	}

	if s.speech != nil {
		url, err := s.speech.Synthesize(ctx, text, o.ID)
		switch {
		case err != nil:
			obs.CollaboratorFailure("speech_synthesis")
			obs.LogEvent("warn", "speech synthesis degraded", map[string]any{
				"obituary_id": o.ID,
				"error":       err.Error(),
			})
		case url != "":
			if err := s.store.SetAudioURL(ctx, o.ID, url); err != nil {
				obs.LogEvent("warn", "audio url not persisted", map[string]any{
					"obituary_id": o.ID,
					"error":       err.Error(),
				})
			} else {
				o.AudioURL = url
			}
		}
	}

	return o, nil
}

// Get returns a record by id. Private records are visible only to their
// owner; for everyone else the outcome is the same as a missing id.
func (s *Service) Get(ctx context.Context, id, viewerID string) (*Obituary, error) {
	o, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Public && o.UserID != viewerID {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the public feed, or the owner's records when f.OwnerID is set.
// Newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Obituary, error) {
	return s.store.List(ctx, f)
}

// Count reports the total records behind a listing, ignoring pagination.
func (s *Service) Count(ctx context.Context, f Filter) (int, error) {
	return s.store.Count(ctx, f)
}

// Delete removes a record owned by ownerID. A foreign or missing record is
// the same ErrNotFound; existence is never confirmed to non-owners.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if id == "" || ownerID == "" {
		return ErrNotFound
	}
	return s.store.DeleteOwned(ctx, id, ownerID)
}

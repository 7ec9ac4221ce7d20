package obituary

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubWriter struct{}

func (stubWriter) Obituary(ctx context.Context, name, birthDate, deathDate string) string {
	return fmt.Sprintf("%s was born on %s and passed away on %s.", name, birthDate, deathDate)
}

type stubUploader struct {
	url  string
	err  error
	seen []string
}

func (u *stubUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	u.seen = append(u.seen, filename)
	return u.url, u.err
}

type stubSpeech struct {
	url string
	err error
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, obituaryID string) (string, error) {
	return s.url, s.err
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	uploader := &stubUploader{url: "https://cdn.example/photo.jpg"}
	speech := &stubSpeech{url: "https://cdn.example/audio.mp3"}
	svc := NewService(store, stubWriter{}, uploader, speech)

	o, err := svc.Create(ctx, "owner-1", CreateInput{
		Name:      "Ada Lovelace",
		BirthDate: "1815-12-10",
		DeathDate: "1852-11-27",
		Public:    true,
		ImageData: []byte("jpegbytes"),
		ImageName: "ada.jpg",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" {
		t.Fatal("expected generated id")
	}
	if o.UserID != "owner-1" {
		t.Fatalf("owner = %q", o.UserID)
	}
	if o.Text != "Ada Lovelace was born on 1815-12-10 and passed away on 1852-11-27." {
		t.Fatalf("unexpected text %q", o.Text)
	}
	if o.ImageURL != "https://cdn.example/photo.jpg" {
		t.Fatalf("image url = %q", o.ImageURL)
	}
	if o.AudioURL != "https://cdn.example/audio.mp3" {
		t.Fatalf("audio url = %q", o.AudioURL)
	}

	stored, err := store.Find(ctx, o.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.AudioURL != o.AudioURL {
		t.Fatalf("audio url not persisted, got %q", stored.AudioURL)
	}
	if len(uploader.seen) != 1 || uploader.seen[0] != "ada.jpg" {
		t.Fatalf("uploader calls = %v", uploader.seen)
	}
}

func TestServiceCreateDegradesOnCollaboratorFailure(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	uploader := &stubUploader{err: errors.New("lambda timeout")}
	speech := &stubSpeech{err: errors.New("tts unavailable")}
	svc := NewService(store, stubWriter{}, uploader, speech)

	o, err := svc.Create(ctx, "owner-1", CreateInput{
		Name:      "Grace Hopper",
		BirthDate: "1906-12-09",
		DeathDate: "1992-01-01",
		ImageData: []byte("jpegbytes"),
		ImageName: "grace.jpg",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ImageURL != "" {
		t.Fatalf("expected empty image url, got %q", o.ImageURL)
	}
	if o.AudioURL != "" {
		t.Fatalf("expected empty audio url, got %q", o.AudioURL)
	}

	// The record itself is durable despite both failures.
	if _, err := store.Find(ctx, o.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
}

func TestServiceCreateWithoutCollaborators(t *testing.T) {
	svc := NewService(NewInMemory(), stubWriter{}, nil, nil)

	o, err := svc.Create(context.Background(), "owner-1", CreateInput{
		Name:      "No Media",
		BirthDate: "1900-01-01",
		DeathDate: "1980-01-01",
		ImageData: []byte("ignored"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ImageURL != "" || o.AudioURL != "" {
		t.Fatalf("expected no media urls, got %q / %q", o.ImageURL, o.AudioURL)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(NewInMemory(), stubWriter{}, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing name", CreateInput{BirthDate: "1900-01-01", DeathDate: "1980-01-01"}},
		{"blank name", CreateInput{Name: "   ", BirthDate: "1900-01-01", DeathDate: "1980-01-01"}},
		{"missing birth date", CreateInput{Name: "X", DeathDate: "1980-01-01"}},
		{"missing death date", CreateInput{Name: "X", BirthDate: "1900-01-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "owner-1", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := svc.Create(ctx, "", CreateInput{Name: "X", BirthDate: "1900-01-01", DeathDate: "1980-01-01"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for missing owner", err)
	}
}

func TestServiceGetVisibility(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	svc := NewService(store, stubWriter{}, nil, nil)

	pub, err := svc.Create(ctx, "owner-1", CreateInput{Name: "Public", BirthDate: "1900-01-01", DeathDate: "1980-01-01", Public: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	priv, err := svc.Create(ctx, "owner-1", CreateInput{Name: "Private", BirthDate: "1900-01-01", DeathDate: "1980-01-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Public record: visible to anyone, including anonymous viewers.
	if _, err := svc.Get(ctx, pub.ID, ""); err != nil {
		t.Fatalf("get public anonymous: %v", err)
	}
	if _, err := svc.Get(ctx, pub.ID, "owner-2"); err != nil {
		t.Fatalf("get public other viewer: %v", err)
	}

	// Private record: owner only. Everyone else sees the same not-found as a
	// missing id.
	if _, err := svc.Get(ctx, priv.ID, "owner-1"); err != nil {
		t.Fatalf("get private as owner: %v", err)
	}
	if _, err := svc.Get(ctx, priv.ID, "owner-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get private as stranger: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, priv.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get private anonymous: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, "missing", "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}
}

func TestServiceDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	svc := NewService(store, stubWriter{}, nil, nil)

	o, err := svc.Create(ctx, "owner-1", CreateInput{Name: "X", BirthDate: "1900-01-01", DeathDate: "1980-01-01", Public: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, o.ID, "owner-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: err = %v, want ErrNotFound", err)
	}
	// Still there for the owner.
	if _, err := svc.Get(ctx, o.ID, "owner-1"); err != nil {
		t.Fatalf("get after foreign delete: %v", err)
	}

	if err := svc.Delete(ctx, o.ID, "owner-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, o.ID, "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, o.ID, "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete: err = %v, want ErrNotFound", err)
	}
}

package obituary

import (
	"context"
	"database/sql"
	"errors"

	"thelastshow.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, o *Obituary) error {
	if o.ID == "" {
		o.ID = ids.New()
	}
	return s.db.QueryRowContext(ctx, `
		insert into obituaries(id, user_id, name, birth_date, death_date, obituary_text, image_url, audio_url, is_public)
		values ($1, $2, $3, $4, $5, $6, nullif($7,''), nullif($8,''), $9)
		returning created_at
	`, o.ID, o.UserID, o.Name, o.BirthDate, o.DeathDate, o.Text, o.ImageURL, o.AudioURL, o.Public).Scan(&o.CreatedAt)
}

func (s *PGStore) Find(ctx context.Context, id string) (*Obituary, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, user_id, name, birth_date, death_date, obituary_text,
			coalesce(image_url,''), coalesce(audio_url,''), is_public, created_at
		from obituaries where id = $1
	`, id)
	var o Obituary
	if err := scanObituary(row.Scan, &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Obituary, error) {
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	var (
		rows *sql.Rows
		err  error
	)
	if f.OwnerID != "" {
		rows, err = s.db.QueryContext(ctx, `
			select id, user_id, name, birth_date, death_date, obituary_text,
				coalesce(image_url,''), coalesce(audio_url,''), is_public, created_at
			from obituaries
			where user_id = $1
			order by created_at desc, id desc
			offset $2 limit $3
		`, f.OwnerID, skip, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, user_id, name, birth_date, death_date, obituary_text,
				coalesce(image_url,''), coalesce(audio_url,''), is_public, created_at
			from obituaries
			where is_public
			order by created_at desc, id desc
			offset $1 limit $2
		`, skip, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Obituary
	for rows.Next() {
		var o Obituary
		if err := scanObituary(rows.Scan, &o); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (s *PGStore) Count(ctx context.Context, f Filter) (int, error) {
	var (
		n   int
		err error
	)
	if f.OwnerID != "" {
		err = s.db.QueryRowContext(ctx, `select count(*) from obituaries where user_id = $1`, f.OwnerID).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `select count(*) from obituaries where is_public`).Scan(&n)
	}
	return n, err
}

func (s *PGStore) SetAudioURL(ctx context.Context, id, url string) error {
	res, err := s.db.ExecContext(ctx, `update obituaries set audio_url = $2 where id = $1`, id, url)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from obituaries where id = $1 and user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanObituary(scan func(dest ...any) error, o *Obituary) error {
	return scan(&o.ID, &o.UserID, &o.Name, &o.BirthDate, &o.DeathDate, &o.Text,
		&o.ImageURL, &o.AudioURL, &o.Public, &o.CreatedAt)
}

package hike

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/db"
	"github.com/Serge13790/Site-Marcheurs/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const hikeColumns = `id, title, date, location, difficulty, duration, distance_km, elevation_m,
	meeting_point, start_time, description, cover_image_url, gpx_track_key, status, created_by, created_at`

type Service struct {
	db           db.Querier
	store        storage.ObjectStore
	tracksBucket string
}

func NewService(database db.Querier, store storage.ObjectStore, tracksBucket string) *Service {
	return &Service{db: database, store: store, tracksBucket: tracksBucket}
}

func (s *Service) CreateHike(ctx context.Context, input Hike) (Hike, error) {
	input.ID = uuid.NewString()
	if input.Status == "" {
		input.Status = StatusDraft
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO hikes (id, title, date, location, difficulty, duration, distance_km, elevation_m,
			meeting_point, start_time, description, cover_image_url, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at
	`, input.ID, input.Title, input.Date, input.Location, input.Difficulty, input.Duration,
		input.DistanceKm, input.ElevationM, input.MeetingPoint, input.StartTime,
		input.Description, input.CoverImageURL, input.Status, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Hike{}, err
	}
	return input, nil
}

func (s *Service) UpdateHike(ctx context.Context, id string, patch Hike) (Hike, error) {
	hike, err := s.GetHike(ctx, id)
	if err != nil {
		return Hike{}, err
	}
	if patch.Title != "" {
		hike.Title = patch.Title
	}
	if !patch.Date.IsZero() {
		hike.Date = patch.Date
	}
	if patch.Location != "" {
		hike.Location = patch.Location
	}
	if patch.Difficulty != "" {
		hike.Difficulty = patch.Difficulty
	}
	if patch.Duration != "" {
		hike.Duration = patch.Duration
	}
	if patch.DistanceKm != 0 {
		hike.DistanceKm = patch.DistanceKm
	}
	if patch.ElevationM != 0 {
		hike.ElevationM = patch.ElevationM
	}
	if patch.MeetingPoint != "" {
		hike.MeetingPoint = patch.MeetingPoint
	}
	if patch.StartTime != "" {
		hike.StartTime = patch.StartTime
	}
	if patch.Description != "" {
		hike.Description = patch.Description
	}
	if patch.CoverImageURL != "" {
		hike.CoverImageURL = patch.CoverImageURL
	}
	if patch.Status != "" {
		if patch.Status != StatusDraft && patch.Status != StatusPublished {
			return Hike{}, errors.New("invalid status")
		}
		hike.Status = patch.Status
	}

	_, err = s.db.Exec(ctx, `
		UPDATE hikes
		SET title=$2, date=$3, location=$4, difficulty=$5, duration=$6, distance_km=$7, elevation_m=$8,
		    meeting_point=$9, start_time=$10, description=$11, cover_image_url=$12, status=$13
		WHERE id=$1
	`, hike.ID, hike.Title, hike.Date, hike.Location, hike.Difficulty, hike.Duration,
		hike.DistanceKm, hike.ElevationM, hike.MeetingPoint, hike.StartTime,
		hike.Description, hike.CoverImageURL, hike.Status)
	if err != nil {
		return Hike{}, err
	}
	return hike, nil
}

func (s *Service) GetHike(ctx context.Context, id string) (Hike, error) {
	row := s.db.QueryRow(ctx, `SELECT `+hikeColumns+` FROM hikes WHERE id=$1`, id)
	return scanHike(row)
}

func (s *Service) DeleteHike(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM hikes WHERE id=$1`, id)
	return err
}

// ListSections fetches the whole calendar and partitions it client-style:
// no pagination, drafts stripped for non-privileged viewers.
func (s *Service) ListSections(ctx context.Context, privileged bool, now time.Time) (Sections, error) {
	rows, err := s.db.Query(ctx, `SELECT `+hikeColumns+` FROM hikes ORDER BY date DESC`)
	if err != nil {
		return Sections{}, err
	}
	defer rows.Close()

	var hikes []Hike
	for rows.Next() {
		h, err := scanHike(rows)
		if err != nil {
			return Sections{}, err
		}
		hikes = append(hikes, h)
	}
	return Partition(hikes, privileged, now), nil
}

// Partition splits hikes into upcoming and archived at day granularity. A hike
// dated exactly today counts as upcoming. Drafts are hidden from
// non-privileged viewers.
func Partition(hikes []Hike, privileged bool, now time.Time) Sections {
	today := truncateToDay(now)

	var sections Sections
	for _, h := range hikes {
		if h.Status == StatusDraft && !privileged {
			continue
		}
		if truncateToDay(h.Date).Before(today) {
			sections.Archived = append(sections.Archived, h)
		} else {
			sections.Upcoming = append(sections.Upcoming, h)
		}
	}

	sort.Slice(sections.Upcoming, func(i, j int) bool {
		return sections.Upcoming[i].Date.Before(sections.Upcoming[j].Date)
	})
	sort.Slice(sections.Archived, func(i, j int) bool {
		return sections.Archived[i].Date.After(sections.Archived[j].Date)
	})
	return sections
}

// ToggleRegistration flips the caller's attendance on a hike. Returns true
// when the toggle ends with the user registered.
func (s *Service) ToggleRegistration(ctx context.Context, hikeID, userID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM registrations WHERE hike_id=$1 AND user_id=$2
	`, hikeID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO registrations (hike_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT (hike_id, user_id) DO NOTHING
	`, hikeID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Registrations(ctx context.Context, hikeID string) ([]Registration, error) {
	rows, err := s.db.Query(ctx, `
		SELECT hike_id, user_id, created_at
		FROM registrations WHERE hike_id=$1
		ORDER BY created_at
	`, hikeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.HikeID, &r.UserID, &r.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	return regs, nil
}

// UploadTrack stores a GPX file in the tracks bucket and records its key on
// the hike. Returns the stored key and its public URL.
func (s *Service) UploadTrack(ctx context.Context, hikeID string, file io.Reader, size int64) (string, string, error) {
	if s.store == nil {
		return "", "", errors.New("object storage unavailable")
	}
	key := hikeID + "/" + uuid.NewString() + ".gpx"
	if err := s.store.Put(ctx, s.tracksBucket, key, file, size, "application/gpx+xml"); err != nil {
		return "", "", err
	}
	if _, err := s.db.Exec(ctx, `UPDATE hikes SET gpx_track_key=$2 WHERE id=$1`, hikeID, key); err != nil {
		return "", "", err
	}
	return key, s.store.PublicURL(s.tracksBucket, key), nil
}

func scanHike(row pgx.Row) (Hike, error) {
	var h Hike
	err := row.Scan(&h.ID, &h.Title, &h.Date, &h.Location, &h.Difficulty, &h.Duration,
		&h.DistanceKm, &h.ElevationM, &h.MeetingPoint, &h.StartTime, &h.Description,
		&h.CoverImageURL, &h.TrackKey, &h.Status, &h.CreatedBy, &h.CreatedAt)
	if err != nil {
		return Hike{}, err
	}
	return h, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package hike

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query failed")

type fakeStore struct {
	putBucket string
	putKey    string
	putErr    error
	removed   []string
	removeErr error
}

func (f *fakeStore) Put(_ context.Context, bucket, key string, _ io.Reader, _ int64, _ string) error {
	f.putBucket = bucket
	f.putKey = key
	return f.putErr
}

func (f *fakeStore) Remove(_ context.Context, _, key string) error {
	f.removed = append(f.removed, key)
	return f.removeErr
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return "http://files.local/" + bucket + "/" + key
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestPartitionHidesDraftsFromMembers(t *testing.T) {
	hikes := []Hike{
		{ID: "h1", Status: StatusPublished, Date: day("2099-01-01")},
		{ID: "h2", Status: StatusDraft, Date: day("2099-01-02")},
	}

	sections := Partition(hikes, false, day("2026-09-01"))
	if len(sections.Upcoming) != 1 || sections.Upcoming[0].ID != "h1" {
		t.Fatalf("draft leaked to member view: %+v", sections)
	}

	sections = Partition(hikes, true, day("2026-09-01"))
	if len(sections.Upcoming) != 2 {
		t.Fatalf("privileged view should include drafts")
	}
}

func TestPartitionTodayCountsAsUpcoming(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	hikes := []Hike{
		{ID: "today", Status: StatusPublished, Date: day("2026-09-01")},
		{ID: "yesterday", Status: StatusPublished, Date: day("2026-08-31")},
		{ID: "tomorrow", Status: StatusPublished, Date: day("2026-09-02")},
	}

	sections := Partition(hikes, false, now)
	if len(sections.Upcoming) != 2 {
		t.Fatalf("expected today + tomorrow upcoming, got %+v", sections.Upcoming)
	}
	if sections.Upcoming[0].ID != "today" || sections.Upcoming[1].ID != "tomorrow" {
		t.Fatalf("upcoming not ascending: %+v", sections.Upcoming)
	}
	if len(sections.Archived) != 1 || sections.Archived[0].ID != "yesterday" {
		t.Fatalf("unexpected archive: %+v", sections.Archived)
	}
}

func TestPartitionArchiveNewestFirst(t *testing.T) {
	hikes := []Hike{
		{ID: "old", Status: StatusPublished, Date: day("2020-01-01")},
		{ID: "recent", Status: StatusPublished, Date: day("2025-01-01")},
	}
	sections := Partition(hikes, false, day("2026-09-01"))
	if sections.Archived[0].ID != "recent" {
		t.Fatalf("archive not newest-first: %+v", sections.Archived)
	}
}

func TestCreateAndGetHike(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO hikes`).
		WithArgs(pgxmock.AnyArg(), "Tour du lac", pgxmock.AnyArg(), "Bimont", "Moyen", "3h",
			9.5, 250.0, "Parking village", "08:30", "Belle boucle", "", StatusDraft, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	svc := NewService(mock, nil, "tracks")
	h, err := svc.CreateHike(context.Background(), Hike{
		Title:        "Tour du lac",
		Date:         day("2026-09-12"),
		Location:     "Bimont",
		Difficulty:   "Moyen",
		Duration:     "3h",
		DistanceKm:   9.5,
		ElevationM:   250,
		MeetingPoint: "Parking village",
		StartTime:    "08:30",
		Description:  "Belle boucle",
		CreatedBy:    "user-1",
	})
	if err != nil {
		t.Fatalf("create hike: %v", err)
	}
	if h.Status != StatusDraft {
		t.Fatalf("expected new hike to default to draft")
	}

	mock.ExpectQuery(`SELECT id, title, date`).
		WithArgs(h.ID).
		WillReturnRows(hikeRows().AddRow(h.ID, h.Title, h.Date, h.Location, h.Difficulty, h.Duration,
			h.DistanceKm, h.ElevationM, h.MeetingPoint, h.StartTime, h.Description, "", "", h.Status, h.CreatedBy, createdAt))

	loaded, err := svc.GetHike(context.Background(), h.ID)
	if err != nil || loaded.Title != "Tour du lac" {
		t.Fatalf("get hike: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func hikeRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "title", "date", "location", "difficulty", "duration",
		"distance_km", "elevation_m", "meeting_point", "start_time", "description",
		"cover_image_url", "gpx_track_key", "status", "created_by", "created_at"})
}

func TestUpdateHikeStatusValidation(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, title, date`).
		WithArgs("h1").
		WillReturnRows(hikeRows().AddRow("h1", "Tour", day("2026-09-12"), "", "", "",
			0.0, 0.0, "", "", "", "", "", StatusDraft, "user-1", time.Now()))

	svc := NewService(mock, nil, "tracks")
	if _, err := svc.UpdateHike(context.Background(), "h1", Hike{Status: "archived"}); err == nil {
		t.Fatalf("expected invalid status error")
	}
}

func TestUpdateHikePublishes(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, title, date`).
		WithArgs("h1").
		WillReturnRows(hikeRows().AddRow("h1", "Tour", day("2026-09-12"), "Bimont", "Moyen", "3h",
			9.5, 250.0, "", "", "", "", "", StatusDraft, "user-1", time.Now()))
	mock.ExpectExec(`UPDATE hikes`).
		WithArgs("h1", "Tour", pgxmock.AnyArg(), "Bimont", "Moyen", "3h", 9.5, 250.0,
			"", "", "", "", StatusPublished).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := NewService(mock, nil, "tracks")
	h, err := svc.UpdateHike(context.Background(), "h1", Hike{Status: StatusPublished})
	if err != nil || h.Status != StatusPublished {
		t.Fatalf("publish: %v", err)
	}
}

func TestToggleRegistration(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock, nil, "tracks")

	mock.ExpectExec(`DELETE FROM registrations`).
		WithArgs("h1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO registrations`).
		WithArgs("h1", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	attending, err := svc.ToggleRegistration(context.Background(), "h1", "user-1")
	if err != nil || !attending {
		t.Fatalf("expected registration on, got %v %v", attending, err)
	}

	mock.ExpectExec(`DELETE FROM registrations`).
		WithArgs("h1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	attending, err = svc.ToggleRegistration(context.Background(), "h1", "user-1")
	if err != nil || attending {
		t.Fatalf("expected registration off, got %v %v", attending, err)
	}
}

func TestUploadTrack(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE hikes SET gpx_track_key`).
		WithArgs("h1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := &fakeStore{}
	svc := NewService(mock, store, "tracks")

	key, url, err := svc.UploadTrack(context.Background(), "h1", bytes.NewReader([]byte("<gpx/>")), 6)
	if err != nil {
		t.Fatalf("upload track: %v", err)
	}
	if store.putBucket != "tracks" || store.putKey != key {
		t.Fatalf("track not stored in tracks bucket: %+v", store)
	}
	if url == "" {
		t.Fatalf("expected public url")
	}
}

func TestUploadTrackStorageError(t *testing.T) {
	store := &fakeStore{putErr: errQuery}
	svc := NewService(nil, store, "tracks")
	if _, _, err := svc.UploadTrack(context.Background(), "h1", bytes.NewReader(nil), 0); err == nil {
		t.Fatalf("expected storage error")
	}
}

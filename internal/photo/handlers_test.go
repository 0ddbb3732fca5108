package photo

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passThroughAs(profile auth.Profile) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("profile", profile)
		return c.Next()
	}
}

func newPhotoApp(t *testing.T, mock pgxmock.PgxPoolIface, store *fakeStore, profile auth.Profile) *fiber.App {
	t.Helper()
	app := fiber.New()
	mw := passThroughAs(profile)
	RegisterRoutes(app.Group("/photos"), NewService(mock, store, "photos"), mw, mw)
	return app
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write([]byte("jpeg")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO photos`).
		WithArgs(pgxmock.AnyArg(), "h1", "user-1", pgxmock.AnyArg(), "cretes.jpg").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := newPhotoApp(t, mock, &fakeStore{}, auth.Profile{ID: "user-1", Role: auth.RoleWalker})

	body, contentType := multipartBody(t, "cretes.jpg")
	req := httptest.NewRequest(http.MethodPost, "/photos/hikes/h1", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status: %v %v", resp.StatusCode, err)
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Uploaded) != 1 || result.Uploaded[0].URL == "" {
		t.Fatalf("expected one uploaded photo with url: %+v", result)
	}
}

func TestUploadEndpointRejectsOversizeBatch(t *testing.T) {
	app := newPhotoApp(t, nil, &fakeStore{}, auth.Profile{ID: "user-1", Role: auth.RoleWalker})

	names := make([]string, MaxBatchSize+1)
	for i := range names {
		names[i] = "photo.jpg"
	}
	body, contentType := multipartBody(t, names...)
	req := httptest.NewRequest(http.MethodPost, "/photos/hikes/h1", body)
	req.Header.Set("Content-Type", contentType)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected oversize batch rejected, got %d", resp.StatusCode)
	}
}

func TestDeleteEndpointUploaderAllowed(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, hike_id, user_id`).
		WithArgs("p1").
		WillReturnRows(photoRows().AddRow("p1", "h1", "user-1", "h1/p1.jpg", "", time.Now()))
	mock.ExpectExec(`DELETE FROM photos`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	store := &fakeStore{}
	app := newPhotoApp(t, mock, store, auth.Profile{ID: "user-1", Role: auth.RoleWalker})

	req := httptest.NewRequest(http.MethodDelete, "/photos/p1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %v %v", resp.StatusCode, err)
	}
	if len(store.removed) != 1 {
		t.Fatalf("object not removed: %+v", store.removed)
	}
}

func TestDeleteEndpointStrangerForbidden(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, hike_id, user_id`).
		WithArgs("p1").
		WillReturnRows(photoRows().AddRow("p1", "h1", "user-1", "h1/p1.jpg", "", time.Now()))

	app := newPhotoApp(t, mock, &fakeStore{}, auth.Profile{ID: "user-2", Role: auth.RoleWalker})

	req := httptest.NewRequest(http.MethodDelete, "/photos/p1", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", resp.StatusCode)
	}
}

func TestDeleteEndpointAdminAllowed(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, hike_id, user_id`).
		WithArgs("p1").
		WillReturnRows(photoRows().AddRow("p1", "h1", "user-1", "h1/p1.jpg", "", time.Now()))
	mock.ExpectExec(`DELETE FROM photos`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := newPhotoApp(t, mock, &fakeStore{}, auth.Profile{ID: "admin-1", Role: auth.RoleAdmin})

	req := httptest.NewRequest(http.MethodDelete, "/photos/p1", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected admin delete allowed, got %d", resp.StatusCode)
	}
}

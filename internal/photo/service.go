package photo

import (
	"context"
	"errors"
	"log"
	"path"

	"github.com/Serge13790/Site-Marcheurs/internal/db"
	"github.com/Serge13790/Site-Marcheurs/internal/storage"

	"github.com/google/uuid"
)

// MaxBatchSize caps one upload batch; extra files are ignored client-side and
// rejected here.
const MaxBatchSize = 10

var ErrBatchTooLarge = errors.New("too many files in one batch")

type Service struct {
	db     db.Querier
	store  storage.ObjectStore
	bucket string
}

func NewService(database db.Querier, store storage.ObjectStore, bucket string) *Service {
	return &Service{db: database, store: store, bucket: bucket}
}

// UploadBatch stores each file under a randomized key scoped to the hike and
// inserts the matching row. Per-file failures are logged and skipped; the rest
// of the batch still runs. An insert failure after a successful put leaves an
// orphaned object, which is the accepted error mode.
func (s *Service) UploadBatch(ctx context.Context, hikeID, userID string, files []UploadFile) (BatchResult, error) {
	if len(files) > MaxBatchSize {
		return BatchResult{}, ErrBatchTooLarge
	}

	result := BatchResult{Failed: []string{}}
	for _, f := range files {
		key := hikeID + "/" + uuid.NewString() + path.Ext(f.Name)

		if err := s.store.Put(ctx, s.bucket, key, f.Reader, f.Size, f.ContentType); err != nil {
			log.Printf("photo upload failed: %s: %v", f.Name, err)
			result.Failed = append(result.Failed, f.Name)
			continue
		}

		p := Photo{
			ID:          uuid.NewString(),
			HikeID:      hikeID,
			UserID:      userID,
			StoragePath: key,
			Caption:     f.Name,
		}
		row := s.db.QueryRow(ctx, `
			INSERT INTO photos (id, hike_id, user_id, storage_path, caption)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING created_at
		`, p.ID, p.HikeID, p.UserID, p.StoragePath, p.Caption)
		if err := row.Scan(&p.CreatedAt); err != nil {
			log.Printf("photo row insert failed: %s: %v", f.Name, err)
			result.Failed = append(result.Failed, f.Name)
			continue
		}
		p.URL = s.store.PublicURL(s.bucket, key)
		result.Uploaded = append(result.Uploaded, p)
	}
	return result, nil
}

// Gallery lists a hike's photos with their derived public URLs.
func (s *Service) Gallery(ctx context.Context, hikeID string) ([]Photo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, hike_id, user_id, storage_path, caption, created_at
		FROM photos WHERE hike_id=$1
		ORDER BY created_at DESC
	`, hikeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.HikeID, &p.UserID, &p.StoragePath, &p.Caption, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.URL = s.store.PublicURL(s.bucket, p.StoragePath)
		photos = append(photos, p)
	}
	return photos, nil
}

func (s *Service) Get(ctx context.Context, id string) (Photo, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, hike_id, user_id, storage_path, caption, created_at
		FROM photos WHERE id=$1
	`, id)
	var p Photo
	if err := row.Scan(&p.ID, &p.HikeID, &p.UserID, &p.StoragePath, &p.Caption, &p.CreatedAt); err != nil {
		return Photo{}, err
	}
	return p, nil
}

// Delete removes the storage object first, then the row. A storage failure
// short-circuits so the row is never orphaned from its object.
func (s *Service) Delete(ctx context.Context, p Photo) error {
	if err := s.store.Remove(ctx, s.bucket, p.StoragePath); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM photos WHERE id=$1`, p.ID)
	return err
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Serge13790/Site-Marcheurs/internal/config"
	"github.com/Serge13790/Site-Marcheurs/internal/db"
	"github.com/Serge13790/Site-Marcheurs/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// importedMarker tags hikes created by this tool so they are recognizable in
// the back-office.
const importedMarker = "Importé depuis l'ancien site"

var folderRe = regexp.MustCompile(`^(\d{4})[_-](\d{2})[_-](\d{2})[_-](.+)$`)

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

func main() {
	dir := flag.String("dir", "", "directory of legacy gallery folders (YYYY_MM_DD_Title)")
	flag.Parse()
	if *dir == "" {
		log.Fatal("usage: migrate -dir <legacy gallery root>")
	}

	cfg := config.Load()
	pg, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pg.Close()

	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatalf("minio client init failed: %v", err)
	}

	im := &Importer{db: pg, store: store, bucket: cfg.PhotosBucket}
	if err := im.ImportDir(context.Background(), *dir); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

// parseFolderName derives the hike date and title from a legacy folder name.
// Underscores and dashes in the title part become spaces.
func parseFolderName(name string) (time.Time, string, bool) {
	m := folderRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", false
	}
	date, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	if err != nil {
		return time.Time{}, "", false
	}
	title := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(m[4]))
	if title == "" {
		return time.Time{}, "", false
	}
	return date, title, true
}

type Importer struct {
	db     db.Querier
	store  storage.ObjectStore
	bucket string
}

// ImportDir walks the legacy gallery root. Each well-named folder becomes a
// published hike (unless one with the same title and date already exists) and
// its images are uploaded and registered. Reruns skip everything already
// imported; a bad folder or file never stops the rest.
func (im *Importer) ImportDir(ctx context.Context, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, title, ok := parseFolderName(entry.Name())
		if !ok {
			log.Printf("skipping %s: not a dated gallery folder", entry.Name())
			continue
		}

		hikeID, err := im.ensureHike(ctx, title, date)
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}
		im.importPhotos(ctx, hikeID, filepath.Join(root, entry.Name()))
	}
	return nil
}

func (im *Importer) ensureHike(ctx context.Context, title string, date time.Time) (string, error) {
	var id string
	err := im.db.QueryRow(ctx, `SELECT id FROM hikes WHERE title=$1 AND date=$2`, title, date).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	id = uuid.NewString()
	_, err = im.db.Exec(ctx, `
		INSERT INTO hikes (id, title, date, description, status)
		VALUES ($1,$2,$3,$4,'published')
	`, id, title, date, importedMarker)
	if err != nil {
		return "", err
	}
	log.Printf("created hike %q (%s)", title, date.Format("2006-01-02"))
	return id, nil
}

func (im *Importer) importPhotos(ctx context.Context, hikeID, dir string) {
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("cannot read %s: %v", dir, err)
		return
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(f.Name()))]
		if !ok {
			continue
		}

		key := hikeID + "/" + f.Name()
		imported, err := im.photoExists(ctx, key)
		if err != nil {
			log.Printf("lookup failed for %s: %v", key, err)
			continue
		}
		if imported {
			continue
		}

		if err := im.uploadPhoto(ctx, hikeID, filepath.Join(dir, f.Name()), key, contentType); err != nil {
			log.Printf("import failed for %s: %v", key, err)
		}
	}
}

func (im *Importer) photoExists(ctx context.Context, key string) (bool, error) {
	var id string
	err := im.db.QueryRow(ctx, `SELECT id FROM photos WHERE storage_path=$1`, key).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

func (im *Importer) uploadPhoto(ctx context.Context, hikeID, path, key, contentType string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	if err := im.store.Put(ctx, im.bucket, key, file, info.Size(), contentType); err != nil {
		return err
	}

	_, err = im.db.Exec(ctx, `
		INSERT INTO photos (id, hike_id, storage_path, caption)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), hikeID, key, filepath.Base(path))
	if err != nil {
		return err
	}
	log.Printf("imported %s", key)
	return nil
}

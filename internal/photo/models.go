package photo

import (
	"io"
	"time"
)

type Photo struct {
	ID          string    `json:"id"`
	HikeID      string    `json:"hike_id"`
	UserID      string    `json:"user_id"`
	StoragePath string    `json:"storage_path"`
	Caption     string    `json:"caption"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadFile is one file of a batch upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// BatchResult reports the per-file outcome of a best-effort batch. A partial
// batch is not rolled back; failed names are returned for the caller to retry.
type BatchResult struct {
	Uploaded []Photo  `json:"uploaded"`
	Failed   []string `json:"failed"`
}

package hike

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Hike struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Difficulty    string    `json:"difficulty"`
	Duration      string    `json:"duration"`
	DistanceKm    float64   `json:"distance_km"`
	ElevationM    float64   `json:"elevation_m"`
	MeetingPoint  string    `json:"meeting_point"`
	StartTime     string    `json:"start_time"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"cover_image_url"`
	TrackKey      string    `json:"gpx_track_key"`
	Status        string    `json:"status"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type Registration struct {
	HikeID    string    `json:"hike_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Sections is the member-facing split of the hike calendar.
type Sections struct {
	Upcoming []Hike `json:"upcoming"`
	Archived []Hike `json:"archived"`
}

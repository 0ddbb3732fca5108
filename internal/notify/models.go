package notify

import (
	"encoding/json"
	"strings"
)

// ChangeEvent is the database webhook payload: one row-level change with the
// row before and after.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      string          `json:"type"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
}

type profileRecord struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	DisplayName        string `json:"display_name"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	City               string `json:"city"`
	PhoneMobile        string `json:"phone_mobile"`
	IsProfileCompleted bool   `json:"is_profile_completed"`
	Approved           bool   `json:"approved"`
}

func (p profileRecord) fullName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

type hikeRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by"`
}

// day strips a timestamp suffix so date columns compare as plain days.
func (h hikeRecord) day() string {
	if len(h.Date) > 10 {
		return h.Date[:10]
	}
	return h.Date
}

type photoRecord struct {
	ID          string `json:"id"`
	HikeID      string `json:"hike_id"`
	UserID      string `json:"user_id"`
	StoragePath string `json:"storage_path"`
}

// AuthEmailRequest is the auth-email hook payload.
type AuthEmailRequest struct {
	User struct {
		Email string `json:"email"`
	} `json:"user"`
	EmailData struct {
		Token           string `json:"token"`
		TokenHash       string `json:"token_hash"`
		RedirectTo      string `json:"redirect_to"`
		EmailActionType string `json:"email_action_type"`
	} `json:"email_data"`
}

package notify

import (
	"encoding/json"
	"time"
)

type Kind int

const (
	KindSkip Kind = iota
	KindProfileCompleted
	KindProfileApproved
	KindHikeDeleted
	KindHikePublished
	KindHikeUnpublished
	KindHikePublishedEdited
	KindHikeDraftEdited
	KindPhotoAdded
	KindPhotoRemoved
)

// Decision is the pure outcome of classifying one change event. Kind says what
// to notify (KindSkip with a Reason when nothing should go out); the record
// fields carry whichever row the notification is about.
type Decision struct {
	Kind   Kind
	Reason string

	Profile profileRecord
	Hike    hikeRecord
	Photo   photoRecord
}

func skip(reason string) Decision {
	return Decision{Kind: KindSkip, Reason: reason}
}

// published also accepts the legacy French status value still present in
// imported rows.
func published(status string) bool {
	return status == "published" || status == "Publiée"
}

// Decide classifies a change event without touching the database or the mail
// provider. Replayed webhooks fall out as skips because the decision only
// looks at the old/new value transition.
func Decide(ev ChangeEvent, now time.Time) Decision {
	switch ev.Table {
	case "profiles":
		if ev.Type != "UPDATE" {
			return skip("unhandled event")
		}
		var rec, old profileRecord
		if err := json.Unmarshal(ev.Record, &rec); err != nil || rec.Email == "" {
			return skip("no user record")
		}
		_ = json.Unmarshal(ev.OldRecord, &old)
		if rec.IsProfileCompleted && !old.IsProfileCompleted {
			return Decision{Kind: KindProfileCompleted, Profile: rec}
		}
		if rec.Approved && !old.Approved {
			return Decision{Kind: KindProfileApproved, Profile: rec}
		}
		return skip("no relevant transition")

	case "hikes":
		switch ev.Type {
		case "DELETE":
			var old hikeRecord
			_ = json.Unmarshal(ev.OldRecord, &old)
			return Decision{Kind: KindHikeDeleted, Hike: old}
		case "INSERT", "UPDATE":
			var rec, old hikeRecord
			if err := json.Unmarshal(ev.Record, &rec); err != nil {
				return skip("no hike record")
			}
			_ = json.Unmarshal(ev.OldRecord, &old)
			isPub, wasPub := published(rec.Status), published(old.Status)
			switch {
			case isPub && !wasPub:
				if d := rec.day(); d != "" && d < now.Format("2006-01-02") {
					return skip("past hike published")
				}
				return Decision{Kind: KindHikePublished, Hike: rec}
			case !isPub && wasPub:
				return Decision{Kind: KindHikeUnpublished, Hike: rec}
			case isPub && wasPub:
				return Decision{Kind: KindHikePublishedEdited, Hike: rec}
			default:
				return Decision{Kind: KindHikeDraftEdited, Hike: rec}
			}
		}
		return skip("unhandled event")

	case "photos":
		switch ev.Type {
		case "INSERT":
			var rec photoRecord
			if err := json.Unmarshal(ev.Record, &rec); err != nil {
				return skip("no photo record")
			}
			return Decision{Kind: KindPhotoAdded, Photo: rec}
		case "DELETE":
			var old photoRecord
			_ = json.Unmarshal(ev.OldRecord, &old)
			return Decision{Kind: KindPhotoRemoved, Photo: old}
		}
		return skip("unhandled event")
	}
	return skip("unhandled event")
}

package provider

import "time"

type SessionType string

const (
	SessionVideo SessionType = "video"
	SessionChat  SessionType = "chat"
)

func ValidSessionType(s SessionType) bool {
	return s == SessionVideo || s == SessionChat
}

// Settings holds one provider's scheduling configuration. Created at
// onboarding and mutated by the provider; never deleted while the provider is
// active.
type Settings struct {
	ProviderID       int       `db:"provider_id" json:"provider_id"`
	Timezone         string    `db:"timezone" json:"timezone"`
	VideoDurationMin int       `db:"video_duration_min" json:"video_duration_min"`
	ChatDurationMin  int       `db:"chat_duration_min" json:"chat_duration_min"`
	MinCancelHours   int       `db:"min_cancel_hours" json:"min_cancel_hours"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SessionDuration returns the configured duration for a session type.
func (s *Settings) SessionDuration(t SessionType) (time.Duration, bool) {
	switch t {
	case SessionVideo:
		return time.Duration(s.VideoDurationMin) * time.Minute, true
	case SessionChat:
		return time.Duration(s.ChatDurationMin) * time.Minute, true
	}
	return 0, false
}

type UpdateSettingsRequest struct {
	Timezone         string `json:"timezone" binding:"required"`
	VideoDurationMin int    `json:"video_duration_min" binding:"required,min=10,max=180"`
	ChatDurationMin  int    `json:"chat_duration_min" binding:"required,min=10,max=180"`
	MinCancelHours   int    `json:"min_cancel_hours" binding:"min=0,max=168"`
}

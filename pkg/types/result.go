package types

// ActionResult statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusInfo    = "info"
)

// ActionResult is the uniform envelope every dispatched action returns,
// regardless of which integration produced it. Extra fields are populated
// only by the actions they apply to.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	Track      string `json:"track,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Playlist   string `json:"playlist,omitempty"`
	IsPlaying  *bool  `json:"is_playing,omitempty"`
	ProgressMS int    `json:"progress,omitempty"`
	DurationMS int    `json:"duration,omitempty"`
}

// ErrorResult builds an error-status envelope.
func ErrorResult(message string) ActionResult {
	return ActionResult{Status: StatusError, Message: message}
}

// InfoResult builds an info-status envelope.
func InfoResult(message string) ActionResult {
	return ActionResult{Status: StatusInfo, Message: message}
}

// SuccessResult builds a success-status envelope.
func SuccessResult(message string) ActionResult {
	return ActionResult{Status: StatusSuccess, Message: message}
}

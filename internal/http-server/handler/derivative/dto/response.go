package dto

type ProcessResponse struct {
	Original  string `json:"original"`
	Sized     string `json:"sized"`
	Thumbnail string `json:"thumbnail"`
	Skipped   bool   `json:"skipped"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

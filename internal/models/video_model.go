package models

type VideoMetadata struct {
	VideoID            string   `json:"video_id"`
	FileName           string   `json:"file_name"`
	FileSizeMB         float64  `json:"file_size_mb"`
	DurationSeconds    *float64 `json:"duration_seconds"`
	Topic              string   `json:"topic"`
	TranscriptOptional string   `json:"transcript_optional"`
	NotesOptional      string   `json:"notes_optional"`
}

// VideoURLMap maps video_id to a publicly fetchable URL.
type VideoURLMap map[string]string

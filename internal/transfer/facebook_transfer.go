package transfer

type FacebookReelStartResponse struct {
	VideoID   string `json:"video_id"`
	UploadURL string `json:"upload_url"`
}

type FacebookPhase struct {
	Status string `json:"status"`
}

type FacebookVideoStatus struct {
	VideoStatus     string        `json:"video_status"`
	UploadingPhase  FacebookPhase `json:"uploading_phase"`
	ProcessingPhase FacebookPhase `json:"processing_phase"`
	PublishingPhase FacebookPhase `json:"publishing_phase"`
}

type FacebookStatusResponse struct {
	ID     string              `json:"id"`
	Status FacebookVideoStatus `json:"status"`
}

const (
	FacebookPhaseComplete  = "complete"
	FacebookPhaseError     = "error"
	FacebookStatePublished = "PUBLISHED"
)

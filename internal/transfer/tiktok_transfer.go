package transfer

type TiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

type VideoPostInfo struct {
	Title                 string `json:"title"`
	PrivacyLevel          string `json:"privacy_level"`
	DisableDuet           bool   `json:"disable_duet,omitempty"`
	DisableComment        bool   `json:"disable_comment,omitempty"`
	DisableStitch         bool   `json:"disable_stitch,omitempty"`
	VideoCoverTimestampMs int    `json:"video_cover_timestamp_ms,omitempty"`
}

// VideoSourceInfo describes a FILE_UPLOAD source sent as a single chunk.
type VideoSourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int64  `json:"video_size"`
	ChunkSize       int64  `json:"chunk_size"`
	TotalChunkCount int    `json:"total_chunk_count"`
}

type VideoUploadRequest struct {
	PostInfo   VideoPostInfo   `json:"post_info"`
	SourceInfo VideoSourceInfo `json:"source_info"`
}

type TiktokInitData struct {
	PublishID string `json:"publish_id"`
	UploadURL string `json:"upload_url"`
}

type TikTokUploadResponse struct {
	Data  TiktokInitData `json:"data"`
	Error TiktokError    `json:"error"`
}

type TiktokStatusRequest struct {
	PublishID string `json:"publish_id"`
}

type TiktokStatusData struct {
	Status     string `json:"status"`
	FailReason string `json:"fail_reason"`
}

type TiktokStatusResponse struct {
	Data  TiktokStatusData `json:"data"`
	Error TiktokError      `json:"error"`
}

const (
	TiktokSourceFileUpload    = "FILE_UPLOAD"
	TiktokErrorOK             = "ok"
	TiktokStatusPublishDone   = "PUBLISH_COMPLETE"
	TiktokStatusFailed        = "FAILED"
	TiktokStatusPublishFailed = "PUBLISH_FAILED"
)

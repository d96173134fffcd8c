package models

type PostResult struct {
	VideoID   string   `db:"video_id" json:"video_id"`
	Platform  Platform `db:"platform" json:"platform"`
	Success   bool     `db:"success" json:"success"`
	PostedAt  string   `db:"posted_at" json:"posted_at"`
	Error     string   `db:"error_message" json:"error,omitempty"`
	MediaID   string   `db:"media_id" json:"media_id,omitempty"`
	PublishID string   `db:"publish_id" json:"publish_id,omitempty"`
	FBVideoID string   `db:"fb_video_id" json:"fb_video_id,omitempty"`
	RunID     string   `db:"run_id" json:"run_id,omitempty"`
}

// NativeID returns whichever platform-assigned id the result carries.
func (r *PostResult) NativeID() string {
	switch r.Platform {
	case PlatformInstagram:
		return r.MediaID
	case PlatformTiktok:
		return r.PublishID
	case PlatformFacebook:
		return r.FBVideoID
	}
	return ""
}

// SetNativeID stores id under the field name the platform uses.
func (r *PostResult) SetNativeID(id string) {
	switch r.Platform {
	case PlatformInstagram:
		r.MediaID = id
	case PlatformTiktok:
		r.PublishID = id
	case PlatformFacebook:
		r.FBVideoID = id
	}
}

package models

import "strings"

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTiktok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
)

// Platforms is the canonical platform order used for reporting.
var Platforms = []Platform{PlatformInstagram, PlatformTiktok, PlatformFacebook}

func (p Platform) String() string { return string(p) }

// DisplayName is the capitalised name used in warnings and console output.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformTiktok:
		return "TikTok"
	case PlatformFacebook:
		return "Facebook"
	default:
		return string(p)
	}
}

type PlatformContent struct {
	Title    string   `json:"title,omitempty"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Empty reports whether the copy has neither a caption nor hashtags.
func (c *PlatformContent) Empty() bool {
	return c == nil || (strings.TrimSpace(c.Caption) == "" && len(c.Hashtags) == 0)
}

type PlanItem struct {
	VideoID   string           `json:"video_id"`
	Instagram *PlatformContent `json:"instagram,omitempty"`
	Tiktok    *PlatformContent `json:"tiktok,omitempty"`
	Facebook  *PlatformContent `json:"facebook,omitempty"`
}

// Content returns the copy written for platform, or nil when the item has
// none.
func (i *PlanItem) Content(platform Platform) *PlatformContent {
	switch platform {
	case PlatformInstagram:
		return i.Instagram
	case PlatformTiktok:
		return i.Tiktok
	case PlatformFacebook:
		return i.Facebook
	}
	return nil
}

type ScheduleEntry struct {
	VideoID          string   `json:"video_id"`
	Platform         Platform `json:"platform"`
	PublishTimeLocal string   `json:"publish_time_local"`
	Notes            string   `json:"notes,omitempty"`
}

type BatchSummary struct {
	OverallTheme string `json:"overall_theme"`
	ToneNotes    string `json:"tone_notes"`
}

type SchedulePlan struct {
	Strategy            string          `json:"strategy,omitempty"`
	RecommendedSchedule []ScheduleEntry `json:"recommended_schedule"`
	ComplianceChecks    []string        `json:"compliance_checks,omitempty"`
}

// PostingPlan is the generated plan document. Fields it does not declare
// are ignored on decode.
type PostingPlan struct {
	BatchSummary BatchSummary `json:"batch_summary"`
	Items        []PlanItem   `json:"items"`
	PostingPlan  SchedulePlan `json:"posting_plan"`
}

func (p *PostingPlan) Schedule() []ScheduleEntry {
	return p.PostingPlan.RecommendedSchedule
}

// ContentFor returns the first item's copy for (videoID, platform). Copy
// with no caption and no hashtags counts as missing.
func (p *PostingPlan) ContentFor(videoID string, platform Platform) *PlatformContent {
	for i := range p.Items {
		if p.Items[i].VideoID != videoID {
			continue
		}
		if content := p.Items[i].Content(platform); !content.Empty() {
			return content
		}
		return nil
	}
	return nil
}

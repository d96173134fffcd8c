package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/maheshrc27/reelpost/internal/models"
)

const instagramCaptionLimit = 2200

type hashtagBounds struct {
	min, max int
}

var platformHashtagBounds = []struct {
	platform models.Platform
	bounds   hashtagBounds
}{
	{models.PlatformInstagram, hashtagBounds{5, 12}},
	{models.PlatformTiktok, hashtagBounds{3, 6}},
	{models.PlatformFacebook, hashtagBounds{3, 8}},
}

// ValidatePlan returns advisory warnings for plan. Every check runs; an empty
// result means the plan looks sound. The plan is not modified.
func ValidatePlan(plan *models.PostingPlan, expectedItems int) []string {
	warnings := []string{}

	if len(plan.Items) != expectedItems {
		warnings = append(warnings, fmt.Sprintf("Expected %d items, got %d", expectedItems, len(plan.Items)))
	}

	for i := range plan.Items {
		item := &plan.Items[i]
		vid := item.VideoID
		if vid == "" {
			vid = "?"
		}

		for _, pb := range platformHashtagBounds {
			var n int
			if content := item.Content(pb.platform); content != nil {
				n = len(content.Hashtags)
			}
			if n < pb.bounds.min || n > pb.bounds.max {
				warnings = append(warnings, fmt.Sprintf("%s: %s has %d hashtags (expected %d-%d)",
					vid, pb.platform.DisplayName(), n, pb.bounds.min, pb.bounds.max))
			}
		}

		if n := utf8.RuneCountInString(captionOf(item.Instagram)); n > instagramCaptionLimit {
			warnings = append(warnings, fmt.Sprintf("%s: Instagram caption is %d chars (max %d)",
				vid, n, instagramCaptionLimit))
		}

		distinct := map[string]struct{}{
			captionOf(item.Instagram): {},
			captionOf(item.Tiktok):    {},
			captionOf(item.Facebook):  {},
		}
		if len(distinct) < 3 {
			warnings = append(warnings, fmt.Sprintf("%s: Duplicate captions detected across platforms", vid))
		}
	}

	schedule := plan.Schedule()
	if len(schedule) == 0 {
		warnings = append(warnings, "No posting schedule generated")
	}

	seen := make(map[string]struct{}, len(schedule))
	for _, entry := range schedule {
		if _, dup := seen[entry.PublishTimeLocal]; dup {
			warnings = append(warnings, "Schedule has duplicate publish times")
			break
		}
		seen[entry.PublishTimeLocal] = struct{}{}
	}

	return warnings
}

func captionOf(content *models.PlatformContent) string {
	if content == nil {
		return ""
	}
	return content.Caption
}

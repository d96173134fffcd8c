package report

import (
	"testing"

	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestRun_LiveSummary(t *testing.T) {
	summary := &service.RunSummary{
		Platforms: []models.Platform{models.PlatformTiktok, models.PlatformFacebook},
		Entries: []service.EntryReport{
			{Index: 0, Entry: models.ScheduleEntry{VideoID: "v001", Platform: models.PlatformTiktok}, Status: service.StatusSucceeded},
			{
				Index:  1,
				Entry:  models.ScheduleEntry{VideoID: "v002", Platform: models.PlatformFacebook},
				Status: service.StatusFailed,
				Result: &models.PostResult{Error: "upload failed: boom"},
			},
			{Index: 2, Entry: models.ScheduleEntry{VideoID: "v003", Platform: models.PlatformInstagram}, Status: service.StatusSkippedNotConfigured},
		},
		Succeeded: 1,
		Failed:    1,
		Skipped:   1,
	}

	out := Run(summary, ".tmp/posting_results.json")

	assert.Contains(t, out, "Platforms configured: tiktok, facebook")
	assert.Contains(t, out, "[1/3] Posting v001 -> tiktok... OK")
	assert.Contains(t, out, "FAILED: upload failed: boom")
	assert.Contains(t, out, "SKIP v003 -> instagram (not configured)")
	assert.Contains(t, out, "Posting complete")
	assert.Contains(t, out, ".tmp/posting_results.json")
}

func TestRun_DryRun(t *testing.T) {
	summary := &service.RunSummary{
		DryRun: true,
		Entries: []service.EntryReport{{
			Entry:  models.ScheduleEntry{VideoID: "v001", Platform: models.PlatformInstagram, PublishTimeLocal: "Mon 09:00"},
			Status: service.StatusPreviewed,
			Preview: &service.Preview{
				FileName: "clip.mp4",
				Caption:  "Morning light...",
				Hashtags: []string{"a", "b"},
			},
		}},
	}

	out := Run(summary, "unused")

	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "v001 -> instagram @ Mon 09:00")
	assert.Contains(t, out, "File: clip.mp4")
	assert.Contains(t, out, "Hashtags: a, b")
	assert.NotContains(t, out, "Posting complete")
}

func TestRun_EmptySchedule(t *testing.T) {
	out := Run(&service.RunSummary{}, "unused")

	assert.Contains(t, out, "Nothing to do")
}

func TestWarnings(t *testing.T) {
	assert.Contains(t, Warnings(nil), "Plan validation passed")

	out := Warnings([]string{"No posting schedule generated", "v001: Duplicate captions detected across platforms"})
	assert.Contains(t, out, "Plan validation: 2 warning(s)")
	assert.Contains(t, out, "  - No posting schedule generated\n")
}

func TestScanAndUpload(t *testing.T) {
	d := 12.34
	out := Scan([]models.VideoMetadata{
		{VideoID: "v001", FileName: "a.mp4", FileSizeMB: 3.2, DurationSeconds: &d},
		{VideoID: "v002", FileName: "b.mov", FileSizeMB: 1},
	}, ".tmp/video_metadata.json")

	assert.Contains(t, out, "Selected 2 video(s)")
	assert.Contains(t, out, "v001 a.mp4 (3.2 MB, 12.3s)")
	assert.Contains(t, out, "unknown duration")

	up := Upload(service.UploadStats{Uploaded: 2, Skipped: 1, Missing: 0}, ".tmp/video_urls.json")
	assert.Contains(t, up, "2 uploaded, 1 skipped, 0 missing")
}

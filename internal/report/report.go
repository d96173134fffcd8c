// Package report renders run output for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/maheshrc27/reelpost/internal/service"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	summaryStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder())
)

// Run renders every entry of summary followed by the totals.
func Run(summary *service.RunSummary, resultsPath string) string {
	var b strings.Builder

	if summary.DryRun {
		b.WriteString(headerStyle.Render("=== DRY RUN: no posts will be made ===") + "\n\n")
	} else if len(summary.Platforms) > 0 {
		b.WriteString(fmt.Sprintf("Platforms configured: %s\n\n", joinPlatforms(summary.Platforms)))
	}

	if len(summary.Entries) == 0 {
		b.WriteString("No entries in posting schedule. Nothing to do.\n")
		return b.String()
	}

	total := len(summary.Entries)
	for _, entry := range summary.Entries {
		b.WriteString(renderEntry(entry, total))
	}

	if summary.DryRun {
		b.WriteString("\n" + headerStyle.Render("=== DRY RUN COMPLETE ===") + "\n")
		return b.String()
	}

	totals := strings.Join([]string{
		headerStyle.Render("Posting complete"),
		fmt.Sprintf("Succeeded: %s", okStyle.Render(fmt.Sprint(summary.Succeeded))),
		fmt.Sprintf("Failed:    %s", failStyle.Render(fmt.Sprint(summary.Failed))),
		fmt.Sprintf("Skipped:   %s", skipStyle.Render(fmt.Sprint(summary.Skipped))),
		fmt.Sprintf("Results:   %s", resultsPath),
	}, "\n")
	b.WriteString("\n" + summaryStyle.Render(totals) + "\n")
	return b.String()
}

func renderEntry(entry service.EntryReport, total int) string {
	prefix := fmt.Sprintf("  [%d/%d]", entry.Index+1, total)
	target := fmt.Sprintf("%s -> %s", entry.Entry.VideoID, entry.Entry.Platform)

	switch {
	case entry.Status == service.StatusPreviewed && entry.Preview != nil:
		p := entry.Preview
		return strings.Join([]string{
			fmt.Sprintf("%s %s @ %s", prefix, target, entry.Entry.PublishTimeLocal),
			detailStyle.Render("    File: " + p.FileName),
			detailStyle.Render("    Caption: " + p.Caption),
			detailStyle.Render("    Hashtags: " + strings.Join(p.Hashtags, ", ")),
		}, "\n") + "\n\n"
	case entry.Status.Skipped():
		return fmt.Sprintf("%s %s %s (%s)\n", prefix, skipStyle.Render("SKIP"), target, entry.Status)
	case entry.Status == service.StatusSucceeded:
		return fmt.Sprintf("%s Posting %s... %s\n", prefix, target, okStyle.Render("OK"))
	case entry.Status == service.StatusFailed:
		msg := ""
		if entry.Result != nil {
			msg = entry.Result.Error
		}
		return fmt.Sprintf("%s Posting %s... %s %s\n", prefix, target, failStyle.Render("FAILED:"), msg)
	}
	return fmt.Sprintf("%s %s\n", prefix, target)
}

// Warnings renders validator output; an empty slice renders a pass line.
func Warnings(warnings []string) string {
	if len(warnings) == 0 {
		return okStyle.Render("Plan validation passed") + "\n"
	}
	var b strings.Builder
	b.WriteString(warnStyle.Render(fmt.Sprintf("Plan validation: %d warning(s)", len(warnings))) + "\n")
	for _, w := range warnings {
		b.WriteString("  - " + w + "\n")
	}
	return b.String()
}

func Upload(stats service.UploadStats, urlsPath string) string {
	return fmt.Sprintf("S3 upload complete: %d uploaded, %d skipped, %d missing\nVideo URLs written to %s\n",
		stats.Uploaded, stats.Skipped, stats.Missing, urlsPath)
}

func Scan(videos []models.VideoMetadata, metadataPath string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Selected %d video(s) for this batch.\n", len(videos)))
	for _, v := range videos {
		duration := "unknown duration"
		if v.DurationSeconds != nil {
			duration = fmt.Sprintf("%.1fs", *v.DurationSeconds)
		}
		b.WriteString(detailStyle.Render(fmt.Sprintf("  %s %s (%.1f MB, %s)", v.VideoID, v.FileName, v.FileSizeMB, duration)) + "\n")
	}
	b.WriteString(fmt.Sprintf("\nVideo metadata written to %s\n", metadataPath))
	return b.String()
}

func joinPlatforms(platforms []models.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

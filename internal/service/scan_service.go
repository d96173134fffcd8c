package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/reelpost/internal/models"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

const probeTimeout = 30 * time.Second

// ScanVideos lists the video files in dir, picks up to batchSize of them at
// random and returns their metadata with ids v001, v002, ...
func ScanVideos(ctx context.Context, dir string, batchSize int, logger *slog.Logger) ([]models.VideoMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read videos dir: %w", err)
	}

	var candidates []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		kind, err := filetype.MatchFile(filepath.Join(dir, entry.Name()))
		if err == nil && kind != filetype.Unknown && kind.MIME.Type != "video" {
			logger.Warn("skipping file with non-video content", "file", entry.Name(), "mime", kind.MIME.Value)
			continue
		}
		candidates = append(candidates, entry)
	}
	logger.Info("scanned videos dir", "dir", dir, "found", len(candidates))

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if batchSize > 0 && len(candidates) > batchSize {
		candidates = candidates[:batchSize]
	}

	videos := make([]models.VideoMetadata, 0, len(candidates))
	for i, entry := range candidates {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		videos = append(videos, models.VideoMetadata{
			VideoID:         fmt.Sprintf("v%03d", i+1),
			FileName:        entry.Name(),
			FileSizeMB:      roundTenth(float64(info.Size()) / (1024 * 1024)),
			DurationSeconds: probeDuration(ctx, filepath.Join(dir, entry.Name())),
		})
	}
	return videos, nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeDuration asks ffprobe for the container duration. It returns nil when
// ffprobe is not installed or cannot read the file.
func probeDuration(ctx context.Context, path string) *float64 {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", path).Output()
	if err != nil {
		return nil
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return nil
	}
	d = roundTenth(d)
	return &d
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

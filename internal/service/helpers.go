package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

const (
	separatorParagraph = "\n\n"
	separatorInline    = " "
)

// HashtagString renders tags as "#a #b", stripping any leading markers the
// input already carries so "#a" and "a" come out identical.
func HashtagString(hashtags []string) string {
	parts := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		parts = append(parts, "#"+strings.TrimLeft(tag, "#"))
	}
	return strings.Join(parts, " ")
}

// BuildCaption joins caption and hashtags with sep and trims the result.
func BuildCaption(caption string, hashtags []string, sep string) string {
	return strings.TrimSpace(caption + sep + HashtagString(hashtags))
}

// maxResponseBytes caps how much of an API response is kept; bodies only
// end up in errors and small JSON documents.
const maxResponseBytes = 1 << 20

// readResponse reads at most maxResponseBytes of the body and closes it.
func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// detectVideoContentType sniffs the file header; anything that is not a
// recognised video container falls back to video/mp4.
func detectVideoContentType(path string) string {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown || kind.MIME.Type != "video" {
		return "video/mp4"
	}
	return kind.MIME.Value
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// stripURL drops the request URL from transport errors so access tokens
// carried in query strings never reach logs or the results record.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

package domain

import (
	"regexp"
	"strings"
)

var (
	youtubeURLPattern = regexp.MustCompile(`^((?i:https?://))?(www\.)?(youtube\.com|youtu\.be)/.+`)

	// Matches watch?v=, embed/, v/, /u/x/ and youtu.be/ forms; group 7 holds the id.
	videoIDPattern = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)
)

const videoIDLength = 11

// ValidateQuery trims raw and checks that it looks like a YouTube URL.
// It returns the trimmed URL or a *ValidationError.
func ValidateQuery(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", &ValidationError{Reason: ReasonMissingURL}
	}
	if !youtubeURLPattern.MatchString(url) {
		return "", &ValidationError{Reason: ReasonNotYouTube}
	}
	return url, nil
}

// ExtractVideoID returns the 11-character video id embedded in url.
// It is independent of ValidateQuery and not required before fetching.
func ExtractVideoID(url string) (VideoID, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[7]) != videoIDLength {
		return "", false
	}
	return VideoID(m[7]), true
}

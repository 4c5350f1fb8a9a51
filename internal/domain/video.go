package domain

import "fmt"

// VideoID is the backend's identifier for a video.
type VideoID string

// String returns the string representation of the VideoID.
func (id VideoID) String() string {
	return string(id)
}

// VideoMetadata is the record returned by the backend's metadata endpoint.
// Fields are display-ready strings; the client never derives anything from them.
type VideoMetadata struct {
	ID          VideoID `json:"id"`
	Title       string  `json:"title"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    string  `json:"duration"`
	Views       string  `json:"views"`
	Description string  `json:"description"`
}

// Format is the media container requested from the download endpoint.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatMP4 || f == FormatMP3
}

// Label returns the tab title shown for the format.
func (f Format) Label() string {
	switch f {
	case FormatMP4:
		return "MP4 Video"
	case FormatMP3:
		return "MP3 Audio"
	}
	return string(f)
}

// ParseFormat converts a raw string into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return f, nil
}

// Quality is a format-dependent quality value passed verbatim to the backend.
type Quality string

// String returns the string representation of the Quality.
func (q Quality) String() string {
	return string(q)
}

// QualityOption describes one selectable quality.
type QualityOption struct {
	Quality Quality
	Label   string
	Group   string
}

var qualityOptions = map[Format][]QualityOption{
	FormatMP4: {
		{Quality: "1080", Label: "1080p", Group: "High Quality"},
		{Quality: "720", Label: "720p", Group: "High Quality"},
		{Quality: "480", Label: "480p", Group: "High Quality"},
		{Quality: "360", Label: "360p", Group: "Standard Quality"},
		{Quality: "240", Label: "240p", Group: "Standard Quality"},
		{Quality: "144", Label: "144p", Group: "Standard Quality"},
	},
	FormatMP3: {
		{Quality: "high", Label: "High Quality (320kbps)", Group: "Audio Quality"},
		{Quality: "medium", Label: "Medium Quality (192kbps)", Group: "Audio Quality"},
		{Quality: "low", Label: "Low Quality (128kbps)", Group: "Audio Quality"},
	},
}

// Qualities returns the quality options offered for a format, in display order.
// The returned slice is a copy.
func Qualities(f Format) []QualityOption {
	opts := qualityOptions[f]
	out := make([]QualityOption, len(opts))
	copy(out, opts)
	return out
}

// SupportsQuality reports whether q is one of the options for f.
func SupportsQuality(f Format, q Quality) bool {
	for _, opt := range qualityOptions[f] {
		if opt.Quality == q {
			return true
		}
	}
	return false
}

// DownloadRequest identifies the file the download endpoint should stream.
type DownloadRequest struct {
	VideoID VideoID
	Format  Format
	Quality Quality
}

// Validate checks that the request is complete and the quality fits the format.
func (r DownloadRequest) Validate() error {
	if r.VideoID == "" {
		return ErrNoVideo
	}
	if !r.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, r.Format)
	}
	if !SupportsQuality(r.Format, r.Quality) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidQuality, r.Quality, r.Format)
	}
	return nil
}

// NoticeText is the message shown after a download has been handed off.
func (r DownloadRequest) NoticeText() string {
	return fmt.Sprintf("Your download for the %s %s file should begin shortly.", r.Quality, r.Format)
}

package youtube

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// IDLength is the length of every YouTube video id
const IDLength = 11

var (
	urlPattern      = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)
)

// ExtractID pulls the video id out of a share, watch or embed URL
func ExtractID(rawURL string) (string, bool) {
	m := urlPattern.FindStringSubmatch(rawURL)
	if m == nil || len(m[2]) != IDLength {
		return "", false
	}
	return m[2], true
}

// ParseDuration converts an ISO-8601 duration such as PT1H2M40S to whole minutes.
// Seconds are rounded. Unparseable input yields 0.
func ParseDuration(iso string) int {
	m := durationPattern.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	part := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	hours, minutes, seconds := part(m[1]), part(m[2]), part(m[3])
	return hours*60 + minutes + int(math.Round(float64(seconds)/60))
}

// Fallback is the placeholder metadata used when a lookup fails
func Fallback(id string) Metadata {
	return Metadata{
		Title:        "Workout " + id,
		ChannelName:  "YouTube Channel",
		ThumbnailURL: ThumbnailURL(id),
	}
}

// ThumbnailURL returns the medium quality still for id
func ThumbnailURL(id string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/mqdefault.jpg", id)
}

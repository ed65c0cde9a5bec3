package gallery

import (
	"fmt"
	"regexp"

	goerrors "github.com/goliatone/go-errors"

	"github.com/eureka-automation/eureka-site/internal/content"
)

// TextCodeVideoURLInvalid tags videos whose URL carries no playable id.
const TextCodeVideoURLInvalid = "VIDEO_URL_INVALID"

const (
	videoIDLength = 11
	embedPrefix   = "https://www.youtube.com/embed/"
)

var videoIDPattern = regexp.MustCompile(`^.*(youtu.be\/|v\/|u\/\w\/|embed\/|watch\?v=|\&v=)([^#\&\?]*).*`)

// ExtractVideoID pulls the 11 character YouTube id out of a share, watch or embed URL.
func ExtractVideoID(raw string) (string, bool) {
	match := videoIDPattern.FindStringSubmatch(raw)
	if len(match) < 3 || len(match[2]) != videoIDLength {
		return "", false
	}
	return match[2], true
}

// EmbedURL returns the player URL for raw, or false when no id can be extracted.
func EmbedURL(raw string) (string, bool) {
	id, ok := ExtractVideoID(raw)
	if !ok {
		return "", false
	}
	return embedPrefix + id, true
}

// Lint reports every video whose URL cannot be embedded.
func Lint(videos []content.Video) error {
	var fields []goerrors.FieldError
	for idx, video := range videos {
		if _, ok := ExtractVideoID(video.YouTubeURL); ok {
			continue
		}
		fields = append(fields, goerrors.FieldError{
			Field:   fmt.Sprintf("videos[%d].youtubeUrl", idx),
			Message: "no embeddable video id",
			Value:   video.YouTubeURL,
		})
	}
	if len(fields) == 0 {
		return nil
	}
	return goerrors.NewValidation("videos with unplayable urls", fields...).
		WithTextCode(TextCodeVideoURLInvalid)
}

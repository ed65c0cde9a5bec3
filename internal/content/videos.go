package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/identity"
)

// Video is one gallery entry.
type Video struct {
	ID          string        `json:"id"`
	Title       LocalizedText `json:"title"`
	Thumbnail   string        `json:"thumbnail"`
	YouTubeURL  string        `json:"youtubeUrl"`
	Category    LocalizedText `json:"category"`
	Description LocalizedText `json:"description"`
}

// ParseVideos decodes the video list, keeping document order.
func ParseVideos(raw []byte) ([]Video, error) {
	var videos []Video
	if err := json.Unmarshal(raw, &videos); err != nil {
		return nil, fmt.Errorf("videos: %w", err)
	}
	for idx := range videos {
		if strings.TrimSpace(videos[idx].ID) == "" {
			videos[idx].ID = identity.VideoID(videos[idx].YouTubeURL).String()
		}
	}
	return videos, nil
}

package gallery

import (
	"errors"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"

	"github.com/eureka-automation/eureka-site/internal/content"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// AllCategory is the identity filter.
const AllCategory = "All"

// Mode is the gallery state.
type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeFiltered Mode = "filtered"
	ModePlaying  Mode = "playing"
)

var (
	ErrPlaybackDisabled = errors.New("gallery: playback disabled for video")
	ErrVideoNotFound    = errors.New("gallery: video not found")
	ErrModalOpen        = errors.New("gallery: close the player before filtering")
	ErrNotPlaying       = errors.New("gallery: no video playing")
	ErrInvalidState     = errors.New("gallery: invalid view state")
)

var allLabels = map[string]string{
	"th": "ทั้งหมด",
}

// Category is one filter button.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// ViewState is the serializable state of one gallery instance. It is embedded
// in rendered pages so the browser can hydrate the same state.
type ViewState struct {
	Mode     Mode   `json:"mode"`
	Category string `json:"category"`
	VideoID  string `json:"videoId,omitempty"`
	EmbedURL string `json:"embedUrl,omitempty"`
}

// Gallery filters localized videos and drives the player modal.
type Gallery struct {
	locale string
	videos []content.VideoView
	state  ViewState
	logger interfaces.Logger
}

// Option customises a Gallery.
type Option func(*Gallery)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Gallery) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New starts a gallery in the browsing state.
func New(locale string, videos []content.VideoView, opts ...Option) *Gallery {
	g := &Gallery{
		locale: strings.ToLower(strings.TrimSpace(locale)),
		videos: videos,
		state:  ViewState{Mode: ModeBrowsing, Category: AllCategory},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// State returns a copy of the current view state.
func (g *Gallery) State() ViewState { return g.state }

// Videos returns every video in document order.
func (g *Gallery) Videos() []content.VideoView { return g.videos }

// Categories returns "All" followed by the unique categories in first-seen order.
func (g *Gallery) Categories() []Category {
	out := []Category{{Key: AllCategory, Label: AllLabel(g.locale), Slug: CategorySlug(AllCategory)}}
	seen := map[string]struct{}{}
	for _, video := range g.videos {
		if video.Category == "" {
			continue
		}
		if _, ok := seen[video.Category]; ok {
			continue
		}
		seen[video.Category] = struct{}{}
		out = append(out, Category{Key: video.Category, Label: video.Category, Slug: CategorySlug(video.Category)})
	}
	return out
}

// Filter returns the videos in category, preserving order. "All" is the identity.
func (g *Gallery) Filter(category string) []content.VideoView {
	return Filter(g.videos, category)
}

// Visible returns the videos of the active filter.
func (g *Gallery) Visible() []content.VideoView {
	return g.Filter(g.state.Category)
}

// SelectCategory moves to filtered(category), or browsing for "All".
func (g *Gallery) SelectCategory(category string) error {
	if g.state.Mode == ModePlaying {
		return ErrModalOpen
	}
	category = strings.TrimSpace(category)
	if category == "" || category == AllCategory {
		g.state = ViewState{Mode: ModeBrowsing, Category: AllCategory}
		return nil
	}
	g.state = ViewState{Mode: ModeFiltered, Category: category}
	return nil
}

// Select opens the player for the video with id. Videos without an embeddable
// URL leave the state untouched and report ErrPlaybackDisabled.
func (g *Gallery) Select(id string) (string, error) {
	video, ok := g.find(id)
	if !ok {
		return "", ErrVideoNotFound
	}
	embed, ok := EmbedURL(video.YouTubeURL)
	if !ok {
		g.logger.Warn("gallery.playback.disabled", "video_id", video.ID, "url", video.YouTubeURL)
		return "", goerrors.Wrap(ErrPlaybackDisabled, goerrors.CategoryValidation, "video url has no embeddable id").
			WithTextCode(TextCodeVideoURLInvalid).
			WithMetadata(map[string]any{"video_id": video.ID})
	}
	g.state.Mode = ModePlaying
	g.state.VideoID = video.ID
	g.state.EmbedURL = embed
	return embed, nil
}

// Close dismisses the player and returns to the filter that was active.
func (g *Gallery) Close() error {
	if g.state.Mode != ModePlaying {
		return ErrNotPlaying
	}
	mode := ModeFiltered
	if g.state.Category == AllCategory {
		mode = ModeBrowsing
	}
	g.state = ViewState{Mode: mode, Category: g.state.Category}
	return nil
}

// Playable reports whether video can be opened in the player.
func Playable(video content.VideoView) bool {
	_, ok := ExtractVideoID(video.YouTubeURL)
	return ok
}

// Restore replaces the state after checking it is reachable.
func (g *Gallery) Restore(state ViewState) error {
	switch state.Mode {
	case ModeBrowsing:
		if state.Category != AllCategory || state.VideoID != "" {
			return ErrInvalidState
		}
	case ModeFiltered:
		if state.Category == "" || state.Category == AllCategory || state.VideoID != "" {
			return ErrInvalidState
		}
	case ModePlaying:
		video, ok := g.find(state.VideoID)
		if !ok || state.Category == "" {
			return ErrInvalidState
		}
		embed, ok := EmbedURL(video.YouTubeURL)
		if !ok {
			return ErrInvalidState
		}
		state.EmbedURL = embed
	default:
		return ErrInvalidState
	}
	g.state = state
	return nil
}

func (g *Gallery) find(id string) (content.VideoView, bool) {
	for _, video := range g.videos {
		if video.ID == id {
			return video, true
		}
	}
	return content.VideoView{}, false
}

// Filter returns the videos whose category equals category, keeping order.
func Filter(videos []content.VideoView, category string) []content.VideoView {
	if category == "" || category == AllCategory {
		return videos
	}
	out := make([]content.VideoView, 0, len(videos))
	for _, video := range videos {
		if video.Category == category {
			out = append(out, video)
		}
	}
	return out
}

// AllLabel returns the "All" button label for locale.
func AllLabel(locale string) string {
	if label, ok := allLabels[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return label
	}
	return AllCategory
}

// CategorySlug produces an anchor-safe key for a category. Scripts go-slug
// cannot transliterate are percent-encoded instead.
func CategorySlug(category string) string {
	normalized, err := slug.Normalize(category)
	if err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(url.PathEscape(strings.TrimSpace(category)))
}

package content

// CareerView is a posting resolved for one locale, ready for templates.
type CareerView struct {
	ID            string   `json:"id"`
	Dept          string   `json:"dept"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	Type          string   `json:"type"`
	Desc          []string `json:"desc"`
	Experience    []string `json:"experience"`
	Education     []string `json:"education"`
	Salary        string   `json:"salary"`
	Qualification []string `json:"qualification,omitempty"`
	Benefits      []string `json:"benefits,omitempty"`
}

// VideoView is a video resolved for one locale.
type VideoView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	YouTubeURL  string `json:"youtubeUrl"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Localize resolves every field for locale, falling back to fallback.
func (p CareerPosting) Localize(locale, fallback string) CareerView {
	return CareerView{
		ID:            p.ID,
		Dept:          p.Dept.Resolve(locale, fallback),
		Title:         p.Title.Resolve(locale, fallback),
		Location:      p.Location.Resolve(locale, fallback),
		Type:          p.Type.Resolve(locale, fallback),
		Desc:          p.Desc.ResolveList(locale, fallback),
		Experience:    p.Experience.ResolveList(locale, fallback),
		Education:     p.Education.ResolveList(locale, fallback),
		Salary:        p.Salary.Resolve(locale, fallback),
		Qualification: p.Qualification.ResolveList(locale, fallback),
		Benefits:      p.Benefits.ResolveList(locale, fallback),
	}
}

// Localize resolves every field for locale, falling back to fallback.
func (v Video) Localize(locale, fallback string) VideoView {
	return VideoView{
		ID:          v.ID,
		Title:       v.Title.Resolve(locale, fallback),
		Thumbnail:   v.Thumbnail,
		YouTubeURL:  v.YouTubeURL,
		Category:    v.Category.Resolve(locale, fallback),
		Description: v.Description.Resolve(locale, fallback),
	}
}

// LocalizeCareers projects postings for locale.
func LocalizeCareers(postings []CareerPosting, locale, fallback string) []CareerView {
	out := make([]CareerView, 0, len(postings))
	for _, posting := range postings {
		out = append(out, posting.Localize(locale, fallback))
	}
	return out
}

// LocalizeVideos projects videos for locale.
func LocalizeVideos(videos []Video, locale, fallback string) []VideoView {
	out := make([]VideoView, 0, len(videos))
	for _, video := range videos {
		out = append(out, video.Localize(locale, fallback))
	}
	return out
}

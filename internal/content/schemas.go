package content

import (
	_ "embed"

	"github.com/eureka-automation/eureka-site/internal/validation"
)

var (
	//go:embed schemas/careers.schema.json
	careersSchemaJSON []byte
	//go:embed schemas/videos.schema.json
	videosSchemaJSON []byte

	careersSchema = validation.MustCompile("careers", careersSchemaJSON)
	videosSchema  = validation.MustCompile("videos", videosSchemaJSON)
)

// ValidateCareersDocument checks raw against the careers schema.
func ValidateCareersDocument(raw []byte) error {
	return validation.AsContentError(careersSchema.ValidateJSON(raw))
}

// ValidateVideosDocument checks raw against the videos schema.
func ValidateVideosDocument(raw []byte) error {
	return validation.AsContentError(videosSchema.ValidateJSON(raw))
}

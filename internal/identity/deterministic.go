package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "eureka-site:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by content type so records of different kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CareerID identifies a posting by its department group, position in the group and English title.
func CareerID(dept string, index int, title string) uuid.UUID {
	return UUID(namespace + "career:" + normalize(dept) + ":" + strconv.Itoa(index) + ":" + normalize(title))
}

// VideoID identifies a gallery entry by its source URL.
func VideoID(sourceURL string) uuid.UUID {
	return UUID(namespace + "video:" + strings.TrimSpace(sourceURL))
}

// PageID identifies one rendered (locale, route) document.
func PageID(locale, route string) uuid.UUID {
	return UUID(namespace + "page:" + normalize(locale) + ":" + normalize(route))
}

// SubmissionID tags an outbound application so relayed copies can be correlated in logs.
func SubmissionID(email string, nonce string) uuid.UUID {
	return UUID(namespace + "submission:" + normalize(email) + ":" + strings.TrimSpace(nonce))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

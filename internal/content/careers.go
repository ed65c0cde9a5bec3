package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/identity"
)

// PostingStatus is the publication flag of a career posting.
type PostingStatus string

const (
	StatusOpen   PostingStatus = "open"
	StatusClosed PostingStatus = "closed"
)

// CareerPosting is one job opening. Every user-facing field is localized.
type CareerPosting struct {
	ID            string        `json:"id"`
	Group         string        `json:"-"`
	Status        PostingStatus `json:"status"`
	Dept          LocalizedText `json:"dept"`
	Title         LocalizedText `json:"title"`
	Location      LocalizedText `json:"location"`
	Type          LocalizedText `json:"type"`
	Desc          LocalizedText `json:"desc"`
	Experience    LocalizedText `json:"experience"`
	Education     LocalizedText `json:"education"`
	Salary        LocalizedText `json:"salary"`
	Qualification LocalizedText `json:"qualification,omitzero"`
	Benefits      LocalizedText `json:"benefits,omitzero"`
}

// IsOpen reports whether the posting should be listed.
func (p CareerPosting) IsOpen() bool {
	return PostingStatus(strings.ToLower(strings.TrimSpace(string(p.Status)))) == StatusOpen
}

// ParseCareers decodes the department-grouped careers document. Groups keep
// their document order and postings keep their array order. Postings without
// an id get a deterministic one.
func ParseCareers(raw []byte) ([]CareerPosting, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(decoder, '{'); err != nil {
		return nil, fmt.Errorf("careers: %w", err)
	}

	var postings []CareerPosting
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("careers: %w", err)
		}
		group, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("careers: expected department key, got %v", token)
		}
		var entries []CareerPosting
		if err := decoder.Decode(&entries); err != nil {
			return nil, fmt.Errorf("careers: department %q: %w", group, err)
		}
		for idx := range entries {
			entry := &entries[idx]
			entry.Group = group
			if strings.TrimSpace(entry.ID) == "" {
				entry.ID = identity.CareerID(group, idx, entry.Title.Resolve("en", "")).String()
			}
		}
		postings = append(postings, entries...)
	}
	if err := expectDelim(decoder, '}'); err != nil {
		return nil, fmt.Errorf("careers: %w", err)
	}
	return postings, nil
}

// OpenPostings filters postings down to the open ones, preserving order.
func OpenPostings(postings []CareerPosting) []CareerPosting {
	out := make([]CareerPosting, 0, len(postings))
	for _, posting := range postings {
		if posting.IsOpen() {
			out = append(out, posting)
		}
	}
	return out
}

func expectDelim(decoder *json.Decoder, want json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, token)
	}
	return nil
}

package generator

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/routes"
)

// HeadMetadata is the locale-specific <head> block of a page.
type HeadMetadata struct {
	Title       string
	Description string
	Canonical   string
	// Alternates covers every supported locale, the page's own included,
	// followed by x-default.
	Alternates         []routes.Alternate
	OGLocale           string
	OGLocaleAlternates []string
	OGImage            string
	JSONLD             template.JS
}

// Organization feeds the schema.org Organization block.
type Organization struct {
	Name      string
	LegalName string
	Logo      string
	Email     string
	Telephone string
	Street    string
	Locality  string
	Region    string
	Postal    string
	Country   string
	SameAs    []string
}

type organizationSchema struct {
	Context      string         `json:"@context"`
	Type         string         `json:"@type"`
	Name         string         `json:"name"`
	LegalName    string         `json:"legalName,omitempty"`
	Description  string         `json:"description,omitempty"`
	URL          string         `json:"url,omitempty"`
	Logo         string         `json:"logo,omitempty"`
	InLanguage   string         `json:"inLanguage,omitempty"`
	ContactPoint *contactPoint  `json:"contactPoint,omitempty"`
	Address      *postalAddress `json:"address,omitempty"`
	SameAs       []string       `json:"sameAs,omitempty"`
}

type contactPoint struct {
	Type        string `json:"@type"`
	Telephone   string `json:"telephone,omitempty"`
	Email       string `json:"email,omitempty"`
	ContactType string `json:"contactType"`
}

type postalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

func formatTitle(format, title, siteName string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return siteName
	}
	if format == "" || !strings.Contains(format, "%s") || title == siteName {
		return title
	}
	return fmt.Sprintf(format, title)
}

func ogLocale(mapping map[string]string, locale string) string {
	if value, ok := mapping[locale]; ok && value != "" {
		return value
	}
	return locale
}

func ogAlternates(mapping map[string]string, current string, locales []string) []string {
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		if locale == current {
			continue
		}
		out = append(out, ogLocale(mapping, locale))
	}
	return out
}

// organizationJSONLD renders the Organization schema for a locale's home URL.
// The result is emitted inside a <script type="application/ld+json"> element.
func organizationJSONLD(org Organization, locale, description, homeURL, logoURL string) (template.JS, error) {
	schema := organizationSchema{
		Context:     "https://schema.org",
		Type:        "Organization",
		Name:        org.Name,
		LegalName:   org.LegalName,
		Description: description,
		URL:         homeURL,
		Logo:        logoURL,
		InLanguage:  locale,
		SameAs:      org.SameAs,
	}
	if org.Email != "" || org.Telephone != "" {
		schema.ContactPoint = &contactPoint{
			Type:        "ContactPoint",
			Telephone:   org.Telephone,
			Email:       org.Email,
			ContactType: "customer service",
		}
	}
	if org.Country != "" || org.Locality != "" || org.Street != "" {
		schema.Address = &postalAddress{
			Type:            "PostalAddress",
			StreetAddress:   org.Street,
			AddressLocality: org.Locality,
			AddressRegion:   org.Region,
			PostalCode:      org.Postal,
			AddressCountry:  org.Country,
		}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("generator: marshal organization schema: %w", err)
	}
	return template.JS(data), nil
}

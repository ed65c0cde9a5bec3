package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// anyLocale marks a value that applies to every locale.
const anyLocale = "*"

// Kind tags the LocalizedText variant.
type Kind uint8

const (
	KindText Kind = iota
	KindList
)

// LocalizedText is either Text (one string per locale) or List (an ordered
// sequence of Text items). Source documents mix plain strings, locale maps and
// lists; they are normalized into this shape when decoded.
type LocalizedText struct {
	kind  Kind
	text  map[string]string
	items []LocalizedText
}

// Text builds a Text variant from a locale map.
func Text(values map[string]string) LocalizedText {
	text := make(map[string]string, len(values))
	for locale, value := range values {
		text[normalizeLocale(locale)] = value
	}
	return LocalizedText{kind: KindText, text: text}
}

// Plain builds a Text variant that resolves to value in every locale.
func Plain(value string) LocalizedText {
	return LocalizedText{kind: KindText, text: map[string]string{anyLocale: value}}
}

// List builds a List variant.
func List(items ...LocalizedText) LocalizedText {
	return LocalizedText{kind: KindList, items: slices.Clone(items)}
}

// Kind reports the variant.
func (l LocalizedText) Kind() Kind { return l.kind }

// IsZero reports whether the value carries no text at all.
func (l LocalizedText) IsZero() bool {
	if l.kind == KindList {
		return len(l.items) == 0
	}
	return len(l.text) == 0
}

// Items returns the list entries. Text values yield themselves.
func (l LocalizedText) Items() []LocalizedText {
	if l.kind == KindList {
		return slices.Clone(l.items)
	}
	if l.IsZero() {
		return nil
	}
	return []LocalizedText{l}
}

// Has reports whether a value is present for locale, ignoring fallbacks.
func (l LocalizedText) Has(locale string) bool {
	if l.kind == KindList {
		for _, item := range l.items {
			if item.Has(locale) {
				return true
			}
		}
		return false
	}
	if _, ok := l.text[anyLocale]; ok {
		return true
	}
	_, ok := l.text[normalizeLocale(locale)]
	return ok
}

// Resolve returns the value for locale, then fallback. Lists are joined by newlines.
func (l LocalizedText) Resolve(locale, fallback string) string {
	if l.kind == KindList {
		return strings.Join(l.ResolveList(locale, fallback), "\n")
	}
	if value, ok := l.lookup(locale); ok {
		return value
	}
	if value, ok := l.lookup(fallback); ok {
		return value
	}
	return ""
}

// ResolveList returns the entries present for locale. When locale has none the
// fallback locale's entries are used, so one list never mixes languages.
func (l LocalizedText) ResolveList(locale, fallback string) []string {
	if l.kind == KindText {
		if value := l.Resolve(locale, fallback); value != "" {
			return []string{value}
		}
		return nil
	}
	if out := l.strictList(locale); len(out) > 0 {
		return out
	}
	return l.strictList(fallback)
}

// Locales lists the explicit locales that carry a value.
func (l LocalizedText) Locales() []string {
	seen := map[string]struct{}{}
	var collect func(LocalizedText)
	collect = func(value LocalizedText) {
		if value.kind == KindList {
			for _, item := range value.items {
				collect(item)
			}
			return
		}
		for locale := range value.text {
			if locale != anyLocale {
				seen[locale] = struct{}{}
			}
		}
	}
	collect(l)
	out := make([]string, 0, len(seen))
	for locale := range seen {
		out = append(out, locale)
	}
	slices.Sort(out)
	return out
}

func (l LocalizedText) strictList(locale string) []string {
	if strings.TrimSpace(locale) == "" {
		return nil
	}
	out := make([]string, 0, len(l.items))
	for _, item := range l.items {
		if item.kind == KindList {
			out = append(out, item.strictList(locale)...)
			continue
		}
		if value, ok := item.lookup(locale); ok && value != "" {
			out = append(out, value)
		}
	}
	return out
}

func (l LocalizedText) lookup(locale string) (string, bool) {
	if value, ok := l.text[normalizeLocale(locale)]; ok && locale != "" {
		return value, true
	}
	value, ok := l.text[anyLocale]
	return value, ok
}

// UnmarshalJSON accepts a string, a locale map of strings, a locale map of
// string lists, or a list whose entries are strings or locale maps.
func (l *LocalizedText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = LocalizedText{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*l = Plain(value)
		return nil
	case '[':
		var raw []LocalizedText
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("localized list: %w", err)
		}
		*l = List(raw...)
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		return l.fromLocaleMap(raw)
	default:
		return fmt.Errorf("localized text: unsupported json value %s", string(trimmed))
	}
}

func (l *LocalizedText) fromLocaleMap(raw map[string]json.RawMessage) error {
	text := make(map[string]string, len(raw))
	lists := make(map[string][]string)
	for locale, value := range raw {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var entries []string
			if err := json.Unmarshal(trimmed, &entries); err != nil {
				return fmt.Errorf("localized text %q: %w", locale, err)
			}
			lists[normalizeLocale(locale)] = entries
			continue
		}
		var entry string
		if err := json.Unmarshal(trimmed, &entry); err != nil {
			return fmt.Errorf("localized text %q: %w", locale, err)
		}
		text[normalizeLocale(locale)] = entry
	}
	if len(lists) == 0 {
		*l = LocalizedText{kind: KindText, text: text}
		return nil
	}
	if len(text) > 0 {
		return fmt.Errorf("localized text: cannot mix strings and lists across locales")
	}
	*l = listFromLocaleLists(lists)
	return nil
}

// listFromLocaleLists zips per-locale lists index by index. Locales with
// shorter lists simply have no value for the trailing items.
func listFromLocaleLists(lists map[string][]string) LocalizedText {
	longest := 0
	for _, entries := range lists {
		longest = max(longest, len(entries))
	}
	items := make([]LocalizedText, 0, longest)
	for i := range longest {
		text := make(map[string]string, len(lists))
		for locale, entries := range lists {
			if i < len(entries) {
				text[locale] = entries[i]
			}
		}
		items = append(items, LocalizedText{kind: KindText, text: text})
	}
	return LocalizedText{kind: KindList, items: items}
}

// MarshalJSON writes Text as a locale map (or a string when locale-independent)
// and List as an array.
func (l LocalizedText) MarshalJSON() ([]byte, error) {
	if l.kind == KindList {
		if l.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.items)
	}
	if value, ok := l.text[anyLocale]; ok && len(l.text) == 1 {
		return json.Marshal(value)
	}
	if l.text == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.text)
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}

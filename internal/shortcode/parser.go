package shortcode

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	openTag  = regexp.MustCompile(`{{<\s*([^\s/>]+)([^>]*)>}}`)
	closeTag = regexp.MustCompile(`{{<\s*/\s*([^\s>]+)\s*>}}`)
	paramKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

// Call is one shortcode occurrence in a page body. Positional arguments are
// stored as "0", "1", ... in Params.
type Call struct {
	Name   string
	Params map[string]string
	Inner  string
}

// Param returns the named parameter, falling back to the positional one.
func (c Call) Param(name string, position int) string {
	if value, ok := c.Params[name]; ok {
		return value
	}
	return c.Params[fmt.Sprint(position)]
}

// placeholder is plain alphanumeric text so it survives Markdown rendering in
// safe mode, where HTML comments would be dropped.
func placeholder(idx int) string {
	return fmt.Sprintf("SHORTCODE%dEND", idx)
}

// Extract swaps every shortcode in content for a placeholder and returns the
// calls in placeholder order. A tag with no matching close tag is
// self-closing.
func Extract(content string) (string, []Call, error) {
	type open struct {
		name   string
		start  int
		params map[string]string
	}

	var (
		out   strings.Builder
		calls []Call
		stack []open
		pos   int
	)

	for pos < len(content) {
		openLoc := openTag.FindStringIndex(content[pos:])
		closeLoc := closeTag.FindStringIndex(content[pos:])
		if openLoc == nil && closeLoc == nil {
			out.WriteString(content[pos:])
			break
		}

		if openLoc != nil && (closeLoc == nil || openLoc[0] < closeLoc[0]) {
			start := pos + openLoc[0]
			out.WriteString(content[pos:start])
			match := openTag.FindStringSubmatch(content[start:])
			name := match[1]
			params := parseParams(match[2])
			pos = start + len(match[0])

			if !hasClose(content[pos:], name) {
				out.WriteString(placeholder(len(calls)))
				calls = append(calls, Call{Name: name, Params: params})
				continue
			}
			stack = append(stack, open{name: name, start: out.Len(), params: params})
			continue
		}

		end := pos + closeLoc[0]
		out.WriteString(content[pos:end])
		match := closeTag.FindStringSubmatch(content[end:])
		name := match[1]
		if len(stack) == 0 {
			return "", nil, fmt.Errorf("%w: unexpected {{</ %s >}}", ErrMalformed, name)
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.name != name {
			return "", nil, fmt.Errorf("%w: {{</ %s >}} closes %s", ErrMalformed, name, top.name)
		}

		written := out.String()
		inner := written[top.start:]
		out.Reset()
		out.WriteString(written[:top.start])
		out.WriteString(placeholder(len(calls)))
		calls = append(calls, Call{Name: name, Params: top.params, Inner: strings.TrimSpace(inner)})
		pos = end + len(match[0])
	}

	if len(stack) > 0 {
		return "", nil, fmt.Errorf("%w: unterminated %s", ErrMalformed, stack[len(stack)-1].name)
	}
	return out.String(), calls, nil
}

func hasClose(rest, name string) bool {
	for _, match := range closeTag.FindAllStringSubmatch(rest, -1) {
		if match[1] == name {
			return true
		}
	}
	return false
}

// parseParams splits key=value and positional arguments. Double quotes group
// values containing spaces.
func parseParams(raw string) map[string]string {
	params := map[string]string{}
	positional := 0
	for _, token := range tokenize(strings.TrimSpace(raw)) {
		if key, value, ok := strings.Cut(token, "="); ok && paramKey.MatchString(key) {
			params[key] = strings.Trim(value, `"`)
			continue
		}
		params[fmt.Sprint(positional)] = strings.Trim(token, `"`)
		positional++
	}
	return params
}

func tokenize(raw string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range raw {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

package confluence

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsePageURL extracts the site origin and page ID from a Confluence page
// URL.  Two historical shapes are recognised:
//
//	https://ORG.atlassian.net/pages/viewpage.action?pageId=123456
//	https://ORG.atlassian.net/wiki/spaces/SPACE/pages/123456/Some+Title
//
// plus a defensive fallback for URLs whose final path segment is numeric.
func ParsePageURL(raw string) (site string, pageID string, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("confluence: couldn't parse URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", "", &InvalidURLError{URL: raw}
	}

	site = fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)

	// Legacy viewpage.action form.  Take everything up to the next '&' so
	// additional query parameters don't leak into the ID.
	if _, after, found := strings.Cut(raw, "pageId="); found {
		id, _, _ := strings.Cut(after, "&")
		return site, id, nil
	}

	path := strings.Trim(parsed.Path, "/")
	parts := strings.Split(path, "/")

	// Cloud form: wiki/spaces/<SPACE>/pages/<ID>/<title...>
	if len(parts) >= 5 &&
		parts[0] == "wiki" &&
		parts[1] == "spaces" &&
		parts[3] == "pages" &&
		isNumeric(parts[4]) {
		return site, parts[4], nil
	}

	// Fallback: a numeric final segment.
	if last := parts[len(parts)-1]; isNumeric(last) {
		return site, last, nil
	}

	return "", "", &InvalidURLError{URL: raw}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

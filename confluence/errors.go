package confluence

import "fmt"

// APIError is returned for any non-2xx response from the Confluence REST
// API.  It carries the raw response body because Confluence error payloads
// tend to contain the only useful diagnostic.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence: API request failed with status %d: %s", e.StatusCode, e.Body)
}

// InvalidURLError means no page identifier could be located in a URL.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("confluence: could not extract page ID from URL: %s", e.URL)
}

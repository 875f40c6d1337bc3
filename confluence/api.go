package confluence

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
)

func NewAPI(baseURL string, email string, token string) (*API, error) {

	if baseURL == "" {
		return &API{}, fmt.Errorf("confluence: site base URL is empty, please set CONFLUENCE_BASE_URL")
	}
	if email == "" {
		return &API{}, fmt.Errorf("confluence: account email is empty, please set CONFLUENCE_EMAIL")
	}
	if token == "" {
		return &API{}, fmt.Errorf("confluence: API token is empty, please set CONFLUENCE_API_TOKEN")
	}

	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}

	a := &API{
		BaseURI: u,
		email:   email,
		token:   token,
		Logger:  log.New(os.Stderr, "", log.LstdFlags),
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// The site origin, e.g. https://ORG.atlassian.net
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Warnings (e.g. inaccessible attachment listings) go here.
	Logger *log.Logger

	// Auth info
	email, token string
}

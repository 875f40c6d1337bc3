package confluence

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// getPageByIDEndpoint returns the (v2) API endpoint to download one page:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-get
func (a *API) getPageByIDEndpoint(opts GetPageByIDQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to get page by ID")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/wiki/api/v2/pages/%s", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getDescendantsEndpoint returns the (v2) API endpoint to list all descendants of a page:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-descendants-get
func (a *API) getDescendantsEndpoint(opts DescendantsQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to list descendants")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/wiki/api/v2/pages/%s/descendants", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getAttachmentsEndpoint returns the (v2) API endpoint to list a page's attachments:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-attachment/#api-pages-id-attachments-get
func (a *API) getAttachmentsEndpoint(opts AttachmentsQuery) (*url.URL, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("confluence: please provide ID to list attachments")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/wiki/api/v2/pages/%s/attachments", opts.ID))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// attachmentDownloadEndpoint resolves an attachment's downloadLink, which the
// API hands out relative to the site's /wiki root, in both leading-slash and
// bare forms.
func (a *API) attachmentDownloadEndpoint(downloadLink string) (*url.URL, error) {
	if downloadLink == "" {
		return nil, fmt.Errorf("confluence: attachment download link is empty")
	}

	if !strings.HasPrefix(downloadLink, "/") {
		downloadLink = "/" + downloadLink
	}

	return a.resolveEndpoint("/wiki" + downloadLink)
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	baseUri := a.BaseURI

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: failed to parse endpoint ref: %w", err)
	}

	return baseUri.ResolveReference(ref), nil
}

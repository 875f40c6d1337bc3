package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// paginationLimit is the fixed page size for cursor-paginated listings.
const paginationLimit = 100

// metadataTimeout bounds every individual metadata or download call.  There
// are no retries anywhere in this package; a failure surfaces immediately.
const metadataTimeout = 30 * time.Second

// GetPageByID fetches a single page with its storage-format body.
func (api *API) GetPageByID(ctx context.Context, id string) (*Page, error) {
	ep, err := api.getPageByIDEndpoint(GetPageByIDQuery{
		ID:         id,
		BodyFormat: "storage",
	})
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get single page endpoint: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform request: %w", err)
	}

	var page Page

	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &page, nil
}

// GetDescendants returns every descendant of a page, accumulated across all
// cursor-paginated batches in request order.
func (api *API) GetDescendants(ctx context.Context, id string) ([]Page, error) {
	pages := []Page{}

	q := DescendantsQuery{
		ID:    id,
		Limit: paginationLimit,
	}

	for {
		ep, err := api.getDescendantsEndpoint(q)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't get descendants endpoint: %w", err)
		}

		body, err := api.request(ctx, ep)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list descendants: %w", err)
		}

		var batch MultiPageResponse
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
		}

		pages = append(pages, batch.Results...)

		if batch.Links.Next == "" {
			break
		}
		cursor, err := nextCursor(batch.Links.Next)
		if err != nil {
			return nil, err
		}
		q.Cursor = cursor
	}

	return pages, nil
}

// GetAttachments returns a page's attachment metadata.  A 400 or 404 from the
// listing endpoint is treated as "no attachments / inaccessible": we log a
// warning and return whatever was accumulated so far.  Every other failure
// propagates.
func (api *API) GetAttachments(ctx context.Context, id string) ([]Attachment, error) {
	attachments := []Attachment{}

	q := AttachmentsQuery{
		ID:    id,
		Limit: paginationLimit,
	}

	for {
		ep, err := api.getAttachmentsEndpoint(q)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't get attachments endpoint: %w", err)
		}

		body, err := api.request(ctx, ep)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) &&
				(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound) {
				api.Logger.Printf("confluence: warning: failed to fetch attachments for page %s (status %d)", id, apiErr.StatusCode)
				return attachments, nil
			}
			return nil, fmt.Errorf("confluence: couldn't list attachments: %w", err)
		}

		var batch MultiAttachmentResponse
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
		}

		attachments = append(attachments, batch.Results...)

		if batch.Links.Next == "" {
			break
		}
		cursor, err := nextCursor(batch.Links.Next)
		if err != nil {
			return nil, err
		}
		q.Cursor = cursor
	}

	return attachments, nil
}

// DownloadAttachment fetches an attachment's raw bytes via its relative
// download link.
func (api *API) DownloadAttachment(ctx context.Context, downloadLink string) ([]byte, error) {
	ep, err := api.attachmentDownloadEndpoint(downloadLink)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve download link: %w", err)
	}

	body, err := api.request(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't download attachment: %w", err)
	}

	return body, nil
}

// nextCursor digs the opaque cursor token out of a _links.next URL.
func nextCursor(next string) (string, error) {
	q, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
	}

	cursor := q.Query().Get("cursor")
	if cursor == "" {
		return "", fmt.Errorf("confluence: expected parameter 'cursor' was empty")
	}
	return cursor, nil
}

// Request implements the basic Request function
func (api *API) request(ctx context.Context, url *url.URL) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't instantiate http request: %w", err)
	}

	req.Header.Add("Accept", "application/json, */*")
	req.SetBasicAuth(api.email, api.token)

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("confluence: couldn't close response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &APIError{StatusCode: response.StatusCode, Body: string(body)}
	}

	return body, nil
}

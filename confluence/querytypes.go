package confluence

// GetPageByIDQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-get
type GetPageByIDQuery struct {
	ID string `url:"-"` // ID of the page; required

	// The content format to be returned in the body field of the response.
	// Valid values: storage, atlas_doc_format, view, export_view, anonymous_export_view
	BodyFormat string `url:"body-format,omitempty"`
}

// DescendantsQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-descendants-get
type DescendantsQuery struct {
	ID string `url:"-"` // ID of the root page; required

	// 'Cursor' is used for pagination; this opaque cursor will be returned in the
	// '_links.next' URL of each response.  Absence of a next link means we've seen
	// the final page of results.
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // page limit; default 25, range 1-250
}

// AttachmentsQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-attachment/#api-pages-id-attachments-get
type AttachmentsQuery struct {
	ID string `url:"-"` // ID of the owning page; required

	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"`
}

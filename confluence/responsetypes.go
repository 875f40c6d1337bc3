package confluence

// See https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-get
type Page struct {
	ID       string `json:"id,omitempty"`
	Status   string `json:"status,omitempty"` // current, archived, deleted, trashed
	Title    string `json:"title,omitempty"`
	SpaceID  string `json:"spaceId,omitempty"`
	ParentID string `json:"parentId,omitempty"`

	Body Body `json:"body"`

	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// Body holds the requested body representations
type Body struct {
	Storage Storage `json:"storage"`
}

// Storage defines one body representation
type Storage struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// MultiPageResponse is the shape of the paginated descendants listing.
type MultiPageResponse struct {
	Results []Page `json:"results"`

	Links struct {
		// Contains the relative URL for the next set of results, using a cursor query
		// parameter. This property will not be present if there is no additional data available.
		Next string `json:"next"`
	} `json:"_links"`
}

// Attachment metadata for one file belonging to a page.  DownloadLink is
// relative to the site's /wiki root.
//
// See https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-attachment/
type Attachment struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"` // display filename
	MediaType    string `json:"mediaType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	DownloadLink string `json:"downloadLink"`
}

// MultiAttachmentResponse is the shape of the paginated attachments listing.
type MultiAttachmentResponse struct {
	Results []Attachment `json:"results"`

	Links struct {
		Next string `json:"next"`
	} `json:"_links"`
}

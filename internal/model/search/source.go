package search

// Source is one cited web reference attached to an assistant message.
// IDs are dense 1-based sequence positions within a single search response.
type Source struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	Domain        string `json:"domain"`
	Favicon       string `json:"favicon,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// SearchResult bundles the sources returned for one query.
type SearchResult struct {
	Sources      []Source `json:"sources"`
	TotalResults int      `json:"totalResults"`
}

package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	Categories []string `json:"categories,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text     string
	Category string // empty = all categories
	Limit    int
	Offset   int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push projects into a search index.
type Indexer interface {
	IndexProject(p ProjectRecord) error
}

// ProjectRecord is the data we index for a project.
type ProjectRecord struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Overview     string   `json:"overview"`
	Technologies []string `json:"technologies"`
	Categories   []string `json:"categories"`
	Achievements []string `json:"achievements"`
}

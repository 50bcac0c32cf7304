package storefront

import "sync"

// SearchSession holds the current query, filters, results and loading flag.
// It owns no timers: the debounce between SetQuery and the re-query belongs
// to the calling scheduler, which reports back through SetLoading and
// SetResults. Search state is session-only and never persisted.
type SearchSession struct {
	mu      sync.Mutex
	query   string
	filters map[string]string
	results []*Product
	loading bool
}

func NewSearchSession() *SearchSession {
	return &SearchSession{filters: map[string]string{}}
}

// SetQuery records the raw query text. The caller is expected to follow up
// with a debounced re-query.
func (s *SearchSession) SetQuery(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
}

// Query returns the current query text.
func (s *SearchSession) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetFilters replaces the filter set wholesale.
func (s *SearchSession) SetFilters(filters map[string]string) {
	next := make(map[string]string, len(filters))
	for k, v := range filters {
		next[k] = v
	}
	s.mu.Lock()
	s.filters = next
	s.mu.Unlock()
}

// Filters returns a copy of the current filters.
func (s *SearchSession) Filters() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

// SetLoading marks a query as in flight. It stays true for the duration of
// the query; overlapping queries are the scheduler's concern.
func (s *SearchSession) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// IsLoading reports whether a query is in flight.
func (s *SearchSession) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetResults replaces the result set wholesale and clears the loading flag.
// Stale results are never merged.
func (s *SearchSession) SetResults(results []*Product) {
	next := make([]*Product, len(results))
	copy(next, results)
	s.mu.Lock()
	s.results = next
	s.loading = false
	s.mu.Unlock()
}

// Results returns a copy of the current result set.
func (s *SearchSession) Results() []*Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Product, len(s.results))
	copy(out, s.results)
	return out
}

// ClearSearch resets query, filters and results. The loading flag is left to
// the scheduler that owns any in-flight query.
func (s *SearchSession) ClearSearch() {
	s.mu.Lock()
	s.query = ""
	s.filters = map[string]string{}
	s.results = nil
	s.mu.Unlock()
}

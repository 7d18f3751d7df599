package memory

import (
	"context"
	"fmt"
	"sync"

	"furfolio/internal/export"
)

// Store is the in-memory report sink, used when no spreadsheet is
// configured and in tests.
type Store struct {
	mu      sync.Mutex
	reports []export.RevenueReport
}

var _ export.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteRevenueReport keeps the report and returns a synthetic
// reference.
func (s *Store) WriteRevenueReport(_ context.Context, r export.RevenueReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far.
func (s *Store) Reports() []export.RevenueReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.RevenueReport(nil), s.reports...)
}

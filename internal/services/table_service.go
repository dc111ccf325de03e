// Package services holds the session-scoped state between the pipeline and
// the HTTP presentation layer.
package services

import (
	"errors"
	"log/slog"
	"sync"

	"p2pcli/internal/dataprocessing"
)

// ErrNoSnapshot is returned when no snapshot has been processed yet.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// ErrTableNotFound is returned for unknown table names.
var ErrTableNotFound = errors.New("table not found")

// TableService holds the pipeline result for the current session and serves
// its tables read-only. Loading a new snapshot atomically replaces the
// previous result; results themselves are never mutated.
type TableService struct {
	mu     sync.RWMutex
	logger *slog.Logger
	result *dataprocessing.PipelineResult
}

// NewTableService creates an empty table service.
func NewTableService(logger *slog.Logger) *TableService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableService{logger: logger.With(slog.String("component", "table_service"))}
}

// Load replaces the session result with a freshly computed one.
func (s *TableService) Load(result *dataprocessing.PipelineResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.logger.Info("loaded snapshot result",
		slog.String("snapshot_id", result.SnapshotID),
		slog.Int("line_count", len(result.Lines)))
}

// Result returns the current session result.
func (s *TableService) Result() (*dataprocessing.PipelineResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrNoSnapshot
	}
	return s.result, nil
}

// Table returns the named table's rows from the current result.
func (s *TableService) Table(name string) (interface{}, error) {
	result, err := s.Result()
	if err != nil {
		return nil, err
	}
	rows, ok := result.Table(name)
	if !ok {
		return nil, ErrTableNotFound
	}
	return rows, nil
}

// TableNames lists the available table names in presentation order.
func (s *TableService) TableNames() []string {
	return dataprocessing.TableNames()
}

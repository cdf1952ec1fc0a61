package mcp

import (
	"context"
	"time"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// mockCheckService is a mock implementation of driving.CheckService.
type mockCheckService struct {
	doc     domain.Document
	section domain.Section
	windows []domain.Window
	report  *domain.Report
	err     error
	paths   []string
}

func (m *mockCheckService) Check(_ context.Context, path string) (*domain.Report, error) {
	m.paths = append(m.paths, path)
	return m.report, m.err
}

func (m *mockCheckService) CheckDocument(_ context.Context, _ domain.Document) (*domain.Report, error) {
	return m.report, m.err
}

func (m *mockCheckService) Section(_ context.Context, path string) (domain.Document, domain.Section, error) {
	m.paths = append(m.paths, path)
	return m.doc, m.section, m.err
}

func (m *mockCheckService) Chunks(_ context.Context, path string) ([]domain.Window, error) {
	m.paths = append(m.paths, path)
	return m.windows, m.err
}

func (m *mockCheckService) Supports(_ string) bool {
	return true
}

// mockCacheService is a mock implementation of driving.CacheService.
type mockCacheService struct {
	stats domain.CacheStats
	err   error
}

func (m *mockCacheService) Stats(_ context.Context) (domain.CacheStats, error) {
	return m.stats, m.err
}

func (m *mockCacheService) Clear(_ context.Context) error {
	return m.err
}

func (m *mockCacheService) Prune(_ context.Context, _ time.Duration) (queries, pages int, err error) {
	return 0, 0, m.err
}

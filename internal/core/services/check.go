package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driving"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// Ensure CheckService implements the interface.
var _ driving.CheckService = (*CheckService)(nil)

// CheckService drives a document through the detection pipeline:
// locate the section, chunk it, then score, search, compare and judge each
// window in sequence order. Reports are written only when a window is flagged.
type CheckService struct {
	reader     driven.DocumentReader
	locator    *SectionLocator
	chunker    driven.Chunker
	analysis   *AnalysisService
	retrieval  *RetrievalService
	similarity *SimilarityService
	writers    []driven.ReportWriter
	now        func() time.Time
}

// NewCheckService creates a check service.
// The retrieval and similarity services are optional: without them only the
// AI-score path runs. Writers may be empty, in which case nothing is written.
func NewCheckService(
	reader driven.DocumentReader,
	locator *SectionLocator,
	chunker driven.Chunker,
	analysis *AnalysisService,
	retrieval *RetrievalService,
	similarity *SimilarityService,
	writers ...driven.ReportWriter,
) *CheckService {
	return &CheckService{
		reader:     reader,
		locator:    locator,
		chunker:    chunker,
		analysis:   analysis,
		retrieval:  retrieval,
		similarity: similarity,
		writers:    writers,
		now:        time.Now,
	}
}

// Supports reports whether the file type of path can be checked.
func (s *CheckService) Supports(path string) bool {
	return s.reader.Supports(path)
}

// Section reads the file at path and returns the located section.
func (s *CheckService) Section(ctx context.Context, path string) (domain.Document, domain.Section, error) {
	doc, err := s.reader.ReadFile(ctx, path)
	if err != nil {
		return domain.Document{}, domain.Section{}, fmt.Errorf("read document: %w", err)
	}

	section, err := s.locator.Locate(doc.Content)
	if err != nil {
		return doc, domain.Section{}, err
	}
	return doc, section, nil
}

// Chunks reads the file at path and returns the windows of its section.
func (s *CheckService) Chunks(ctx context.Context, path string) ([]domain.Window, error) {
	doc, section, err := s.Section(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.chunker.Chunk(ctx, section.Text, doc.ID, section.Start)
}

// Check reads the file at path and runs the full pipeline on it.
func (s *CheckService) Check(ctx context.Context, path string) (*domain.Report, error) {
	doc, err := s.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return s.CheckDocument(ctx, doc)
}

// CheckDocument runs the pipeline on an already loaded document.
//
//nolint:gocyclo // Pipeline function with necessary sequential steps
func (s *CheckService) CheckDocument(ctx context.Context, doc domain.Document) (*domain.Report, error) {
	report := &domain.Report{
		RunID:     uuid.New().String(),
		Document:  doc,
		StartedAt: s.now(),
	}
	defer func() { report.FinishedAt = s.now() }()

	logger.Section("Check " + doc.ID)

	// 1. Locate the section
	section, err := s.locator.Locate(doc.Content)
	if errors.Is(err, domain.ErrSectionNotFound) {
		logger.Warn("No literature review section in %s", doc.ID)
		report.Status = domain.StatusSectionNotFound
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locate section: %w", err)
	}
	report.Section = section
	logger.Info("Section %q: %d bytes at %d", section.Heading, section.End-section.Start, section.Start)

	// 2. Chunk it
	windows, err := s.chunker.Chunk(ctx, section.Text, doc.ID, section.Start)
	if errors.Is(err, domain.ErrNothingToAnalyze) {
		report.Status = domain.StatusNothingToAnalyze
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chunk section: %w", err)
	}
	report.Windows = len(windows)

	searching := s.retrieval != nil && s.retrieval.Available() && s.similarity != nil
	if !searching {
		logger.Warn("Web search not configured, only AI scores will be checked")
	}

	// 3. Analyse each window in order
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("Window %d/%d [%d:%d]", i+1, len(windows), w.Start, w.End)

		finding, flagged, err := s.analyseWindow(ctx, w, searching)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", w.Sequence, err)
		}
		if flagged {
			report.Findings = append(report.Findings, finding)
		}
	}
	report.Status = domain.StatusComplete

	// 4. Write reports
	if len(report.Findings) == 0 {
		logger.Info("No windows flagged in %s", doc.ID)
		return report, nil
	}
	report.FinishedAt = s.now()
	for _, w := range s.writers {
		path, err := w.Write(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("write %s report: %w", w.Format(), err)
		}
		report.Files = append(report.Files, path)
	}
	return report, nil
}

// analyseWindow scores one window and, when sources are available, judges it
// against its most similar page. It reports whether the window was flagged.
func (s *CheckService) analyseWindow(ctx context.Context, w domain.Window, searching bool) (domain.Finding, bool, error) {
	score, err := s.analysis.AIScore(ctx, w.Text)
	if err != nil {
		return domain.Finding{}, false, fmt.Errorf("ai score: %w", err)
	}
	logger.Debug("AI score %.1f", score)

	var hits []domain.Hit
	if searching {
		hits, err = s.topHits(ctx, w.Text)
		if err != nil {
			return domain.Finding{}, false, err
		}
	}

	if len(hits) == 0 {
		if !s.analysis.FlagsAI(score) {
			return domain.Finding{}, false, nil
		}
		return domain.Finding{
			Window:  w,
			AIScore: score,
			Verdict: s.analysis.AIOnlyVerdict(score),
		}, true, nil
	}

	// Only the best hit is judged.
	best := hits[0]
	logger.Info("Window %d: best source %s (similarity %.3f)", w.Sequence, best.URL, best.Score)

	verdict, err := s.analysis.Adjudicate(ctx, AdjudicationInput{
		Window:     w.Text,
		URL:        best.URL,
		SourceText: best.Text,
		Similarity: best.Score,
		AIScore:    score,
	})
	if err != nil {
		return domain.Finding{}, false, fmt.Errorf("adjudicate: %w", err)
	}

	return domain.Finding{
		Window:  w,
		AIScore: score,
		Hit:     &best,
		Verdict: verdict,
	}, true, nil
}

// topHits searches the web for text and ranks the fetched pages.
func (s *CheckService) topHits(ctx context.Context, text string) ([]domain.Hit, error) {
	defer logger.Elapsed("search and compare", time.Now())

	queries, err := s.analysis.SearchQueries(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search queries: %w", err)
	}
	logger.Debug("Queries: %q", queries)

	results, err := s.retrieval.RunSearches(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	candidates, err := s.retrieval.Candidates(ctx, results)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	hits, err := s.similarity.FindTopHits(ctx, text, candidates)
	if err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	return hits, nil
}

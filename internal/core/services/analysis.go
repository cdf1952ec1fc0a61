package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
	"github.com/h24486064/plagiarism-detection/internal/core/ports/driven"
	"github.com/h24486064/plagiarism-detection/internal/logger"
)

// maxQueries caps the search queries generated per window.
const maxQueries = 3

// maxQueryRunes keeps fallback queries within search engine limits.
const maxQueryRunes = 64

// AdjudicationInput is a window paired with its most similar source.
type AdjudicationInput struct {
	Window     string
	URL        string
	SourceText string
	Similarity float64
	AIScore    float64
}

// AnalysisService asks the LLM for AI scores, search queries and verdicts.
// Every operation degrades to a heuristic when no LLM is configured or the
// LLM call fails, so a check never aborts on a model error.
type AnalysisService struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	scorer      driven.AIScorer
	aiThreshold float64
}

// NewAnalysisService creates an analysis service.
// The llm parameter is optional (can be nil); scorer is required.
func NewAnalysisService(
	llm driven.LLMService,
	prompts driven.PromptStore,
	scorer driven.AIScorer,
	aiThreshold float64,
) *AnalysisService {
	if aiThreshold <= 0 {
		aiThreshold = domain.DefaultAIFlagThreshold
	}
	return &AnalysisService{
		llm:         llm,
		prompts:     prompts,
		scorer:      scorer,
		aiThreshold: aiThreshold,
	}
}

// UsesLLM reports whether an LLM is configured.
func (s *AnalysisService) UsesLLM() bool {
	return s.llm != nil && s.prompts != nil
}

// AIScore returns the AI-authorship likelihood of text in [0, 100].
func (s *AnalysisService) AIScore(ctx context.Context, text string) (float64, error) {
	if s.UsesLLM() {
		score, err := s.llmScore(ctx, text)
		if err == nil {
			return score, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		logger.Warn("LLM AI score failed, using heuristic: %v", err)
	}
	return clampScore(s.scorer.Score(text)), nil
}

func (s *AnalysisService) llmScore(ctx context.Context, text string) (float64, error) {
	out, err := s.generate(ctx, driven.PromptAIScore, 32, text)
	if err != nil {
		return 0, err
	}

	var parsed struct {
		Score json.RawMessage `json:"score"`
	}
	if obj, ok := extractJSON(out, '{'); ok && json.Unmarshal([]byte(obj), &parsed) == nil && parsed.Score != nil {
		if v, ok := parseNumber(parsed.Score); ok {
			return clampScore(v), nil
		}
	}
	// Some models answer with a bare number.
	if v, err := strconv.ParseFloat(strings.TrimSpace(stripFences(out)), 64); err == nil {
		return clampScore(v), nil
	}
	return 0, fmt.Errorf("unparseable AI score %q", truncateRunes(out, 80))
}

// SearchQueries returns up to three web search queries for text.
func (s *AnalysisService) SearchQueries(ctx context.Context, text string) ([]string, error) {
	if s.UsesLLM() {
		queries, err := s.llmQueries(ctx, text)
		if err == nil && len(queries) > 0 {
			return queries, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("LLM query generation failed, using leading sentences: %v", err)
	}
	return FallbackQueries(text), nil
}

func (s *AnalysisService) llmQueries(ctx context.Context, text string) ([]string, error) {
	out, err := s.generate(ctx, driven.PromptSearchQueries, 256, text)
	if err != nil {
		return nil, err
	}

	var raw []string
	if obj, ok := extractJSON(out, '{'); ok {
		var parsed struct {
			Queries []string `json:"queries"`
		}
		if json.Unmarshal([]byte(obj), &parsed) == nil {
			raw = parsed.Queries
		}
	}
	if raw == nil {
		if arr, ok := extractJSON(out, '['); ok {
			_ = json.Unmarshal([]byte(arr), &raw)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("unparseable queries %q", truncateRunes(out, 80))
	}
	return cleanQueries(raw), nil
}

// Adjudicate judges a window against its best hit.
// The source text is cut to domain.DefaultHitPreviewRunes runes before it is
// sent to the model.
func (s *AnalysisService) Adjudicate(ctx context.Context, in AdjudicationInput) (domain.Verdict, error) {
	in.SourceText = truncateRunes(in.SourceText, domain.DefaultHitPreviewRunes)

	if s.UsesLLM() {
		v, err := s.llmVerdict(ctx, in)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return domain.Verdict{}, ctx.Err()
		}
		logger.Warn("LLM adjudication failed, using heuristic verdict: %v", err)
	}
	return s.HeuristicVerdict(in), nil
}

func (s *AnalysisService) llmVerdict(ctx context.Context, in AdjudicationInput) (domain.Verdict, error) {
	tmpl, err := s.prompts.Load(driven.PromptAdjudicate)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("load prompt: %w", err)
	}
	prompt := fmt.Sprintf(tmpl, in.Window, in.URL, in.SourceText, in.AIScore)

	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 512, JSON: true})
	if err != nil {
		return domain.Verdict{}, err
	}
	return ParseVerdict(out)
}

// HeuristicVerdict derives a verdict from the similarity and AI scores alone.
func (s *AnalysisService) HeuristicVerdict(in AdjudicationInput) domain.Verdict {
	v := domain.Verdict{
		WebPlagiarism: in.URL != "" && in.Similarity > 0,
		AIGenerated:   in.AIScore > s.aiThreshold,
	}

	switch {
	case v.WebPlagiarism:
		v.Confidence = clampScore(in.Similarity * 100)
		v.Justification = fmt.Sprintf("Semantic similarity %.2f to %s; no model verdict available.", in.Similarity, in.URL)
	case v.AIGenerated:
		v.Confidence = clampScore(in.AIScore)
		v.Justification = "No web source found, but the AI detection score is very high."
	default:
		v.Confidence = clampScore(in.AIScore)
		v.Justification = "Below every flagging threshold."
	}
	return v
}

// AIOnlyVerdict is the verdict for a window with no similar source whose AI
// score exceeds the flag threshold.
func (s *AnalysisService) AIOnlyVerdict(score float64) domain.Verdict {
	return domain.Verdict{
		AIGenerated:   true,
		WebPlagiarism: false,
		Confidence:    clampScore(score),
		Justification: "No web source found, but the AI detection score is very high.",
	}
}

// FlagsAI reports whether score exceeds the AI flag threshold.
func (s *AnalysisService) FlagsAI(score float64) bool {
	return score > s.aiThreshold
}

// generate formats the named prompt with text and runs it.
func (s *AnalysisService) generate(ctx context.Context, name string, maxTokens int, text string) (string, error) {
	tmpl, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}
	return s.llm.Generate(ctx, fmt.Sprintf(tmpl, text), driven.GenerateOptions{
		MaxTokens: maxTokens,
		JSON:      true,
	})
}

// ParseVerdict extracts a verdict from model output. The JSON object may be
// wrapped in a code fence or surrounded by prose.
func ParseVerdict(out string) (domain.Verdict, error) {
	obj, ok := extractJSON(out, '{')
	if !ok {
		return domain.Verdict{}, fmt.Errorf("no JSON object in %q", truncateRunes(out, 80))
	}

	var raw struct {
		AIGenerated   json.RawMessage `json:"ai_generated"`
		WebPlagiarism json.RawMessage `json:"web_plagiarism"`
		Confidence    json.RawMessage `json:"confidence"`
		Justification string          `json:"justification"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}

	v := domain.Verdict{
		AIGenerated:   parseBool(raw.AIGenerated),
		WebPlagiarism: parseBool(raw.WebPlagiarism),
		Justification: strings.TrimSpace(raw.Justification),
	}
	if c, ok := parseNumber(raw.Confidence); ok {
		// Some models answer on a 0-1 scale.
		if c > 0 && c <= 1 {
			c *= 100
		}
		v.Confidence = clampScore(c)
	}
	return v, nil
}

// extractJSON returns the outermost JSON value opening with open ('{' or '['),
// ignoring code fences and surrounding prose.
func extractJSON(s string, open byte) (string, bool) {
	closeCh := byte('}')
	if open == '[' {
		closeCh = ']'
	}
	s = stripFences(s)
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closeCh)
	if start < 0 || end <= start {
		return "", false
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// stripFences removes a Markdown code fence around s.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseBool(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		switch strings.ToLower(strings.TrimSpace(str)) {
		case "true", "yes", "是":
			return true
		}
	}
	return false
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, true
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		str = strings.TrimSuffix(strings.TrimSpace(str), "%")
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// FallbackQueries builds search queries from the first sentences of text.
func FallbackQueries(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		switch r {
		case '。', '！', '？', '；', '.', '!', '?', ';', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	var long []string
	for _, s := range sentences {
		if utf8.RuneCountInString(s) >= 8 {
			long = append(long, s)
		}
	}
	if len(long) == 0 {
		long = sentences
	}
	return cleanQueries(long)
}

// cleanQueries trims, collapses whitespace, shortens, dedups and caps queries.
func cleanQueries(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range raw {
		q = strings.Join(strings.FieldsFunc(q, unicode.IsSpace), " ")
		q = truncateRunes(q, maxQueryRunes)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == maxQueries {
			break
		}
	}
	return out
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	return s[:advanceRunes(s, 0, n)]
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// Judgement limits.
const (
	maxRelevantSections  = 3
	maxSectionWords      = 300
	maxKeyPoints         = 5
	fallbackExcerptChars = 1000
	fallbackConfidence   = 50
	defaultConfidence    = 50
	degradedSummary      = "Relevance estimated with a simplified prompt; no detailed analysis is available."
)

var fallbackScore = regexp.MustCompile(`\b(\d{1,3})\b`)

// ParseStatus classifies an LLM judgement response.
type ParseStatus int

const (
	// ParseValid means the response held a judgement that passed validation.
	ParseValid ParseStatus = iota

	// ParseMalformed means no JSON object could be read from the response.
	ParseMalformed

	// ParseInvalid means JSON was found but failed validation.
	ParseInvalid
)

// String returns the string representation.
func (s ParseStatus) String() string {
	switch s {
	case ParseValid:
		return "valid"
	case ParseMalformed:
		return "malformed"
	case ParseInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Judgement is the validated content of a relevance response.
type Judgement struct {
	RelevanceScore   int
	Confidence       int
	Reasoning        string
	RelevantSections []string
	Summary          string
	KeyPoints        []string
}

// ParseOutcome is the result of reading a relevance response.
// Judgement is only meaningful when Status is ParseValid.
type ParseOutcome struct {
	Status    ParseStatus
	Judgement Judgement
	Raw       string
	Problem   string
}

// judgementJSON mirrors the response schema. Pointers detect missing keys.
type judgementJSON struct {
	RelevanceScore   *float64 `json:"relevanceScore"`
	Confidence       *float64 `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	RelevantSections []string `json:"relevantSections"`
	Summary          string   `json:"summary"`
	KeyPoints        []string `json:"keyPoints"`
}

// ParseJudgement strips code fences, reads the first balanced JSON object
// and validates it.
func ParseJudgement(raw string) ParseOutcome {
	out := ParseOutcome{Raw: raw}

	obj, ok := firstJSONObject(stripCodeFences(raw))
	if !ok {
		out.Status = ParseMalformed
		out.Problem = "no JSON object found"
		return out
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		out.Status = ParseMalformed
		out.Problem = err.Error()
		return out
	}

	// The object parsed, so a decode error here is a field of the wrong type.
	var j judgementJSON
	if err := json.Unmarshal([]byte(obj), &j); err != nil {
		out.Status = ParseInvalid
		out.Problem = err.Error()
		return out
	}

	if j.RelevanceScore == nil {
		out.Status = ParseInvalid
		out.Problem = "relevanceScore missing"
		return out
	}
	score := *j.RelevanceScore
	if math.IsNaN(score) || score < 0 || score > 100 {
		out.Status = ParseInvalid
		out.Problem = fmt.Sprintf("relevanceScore %v out of range", score)
		return out
	}

	confidence := defaultConfidence
	if j.Confidence != nil {
		confidence = clamp(int(math.Round(*j.Confidence)), 0, 100)
	}

	out.Status = ParseValid
	out.Judgement = Judgement{
		RelevanceScore:   int(math.Round(score)),
		Confidence:       confidence,
		Reasoning:        strings.TrimSpace(j.Reasoning),
		RelevantSections: limitSections(j.RelevantSections),
		Summary:          strings.TrimSpace(j.Summary),
		KeyPoints:        limitStrings(j.KeyPoints, maxKeyPoints),
	}
	return out
}

// RelevanceJudge asks the completion service how relevant a document is.
type RelevanceJudge struct {
	llm         driven.CompletionService
	promptStore driven.PromptStore
	textLimit   int
}

// NewRelevanceJudge creates a judge. textLimit caps the characters of each
// document sent to the model; zero or less sends the full text.
func NewRelevanceJudge(llm driven.CompletionService, promptStore driven.PromptStore, textLimit int) *RelevanceJudge {
	return &RelevanceJudge{llm: llm, promptStore: promptStore, textLimit: textLimit}
}

// Judge rates one document. It returns nil without error when the document
// is irrelevant or the response could not be understood even after the
// fallback prompt. An error means the completion service call failed.
func (j *RelevanceJudge) Judge(
	ctx context.Context,
	doc domain.ExtractedDocument,
	question string,
) (*domain.SmartSearchResult, error) {
	name := doc.Handle.DisplayName
	template := loadPrompt(j.promptStore, driven.PromptRelevanceJudge, defaultRelevanceJudgePrompt)
	prompt := fmt.Sprintf(template, question, truncateChars(doc.Text, j.textLimit))

	raw, err := j.llm.Generate(ctx, prompt, driven.GenerateOptions{JSON: true, Temperature: 0.1})
	if err != nil {
		return nil, fmt.Errorf("judge %s: %w", name, err)
	}

	outcome := ParseJudgement(raw)
	switch outcome.Status {
	case ParseValid:
		if outcome.Judgement.RelevanceScore == 0 {
			logger.Debug("Judge: %s irrelevant", name)
			return nil, nil
		}
		return resultFromJudgement(doc.Handle, outcome.Judgement), nil

	case ParseInvalid:
		logger.Warn("Judge: %s skipped: %s", name, outcome.Problem)
		return nil, nil

	default:
		logger.Warn("Judge: %s malformed response (%s), using fallback prompt", name, outcome.Problem)
		return j.fallback(ctx, doc, question)
	}
}

// JudgeAll rates documents with at most limit calls in flight. Results keep
// input order. Per-document failures are logged and skipped; if every call
// failed, the last failure is returned so callers can retry.
func (j *RelevanceJudge) JudgeAll(
	ctx context.Context,
	docs []domain.ExtractedDocument,
	question string,
	limit int,
) ([]domain.SmartSearchResult, error) {
	if limit <= 0 {
		limit = 1
	}

	judged := make([]*domain.SmartSearchResult, len(docs))
	failures := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range docs {
		g.Go(func() error {
			res, err := j.Judge(gctx, docs[i], question)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("%v", err)
				failures[i] = err
				return nil
			}
			judged[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var lastFailure error
	failed := 0
	results := make([]domain.SmartSearchResult, 0, len(docs))
	for i := range docs {
		if failures[i] != nil {
			failed++
			lastFailure = failures[i]
			continue
		}
		if judged[i] != nil {
			results = append(results, *judged[i])
		}
	}

	if len(docs) > 0 && failed == len(docs) {
		return nil, fmt.Errorf("%w: %w", domain.ErrJudgmentFailed, lastFailure)
	}
	return results, nil
}

func (j *RelevanceJudge) fallback(
	ctx context.Context,
	doc domain.ExtractedDocument,
	question string,
) (*domain.SmartSearchResult, error) {
	name := doc.Handle.DisplayName
	template := loadPrompt(j.promptStore, driven.PromptRelevanceFallback, defaultRelevanceFallbackPrompt)
	prompt := fmt.Sprintf(template, question, truncateChars(doc.Text, fallbackExcerptChars))

	raw, err := j.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 10})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("Judge: fallback for %s failed: %v", name, err)
		return nil, nil
	}

	score, ok := parseFallbackScore(raw)
	if !ok {
		logger.Warn("Judge: fallback for %s gave no score: %q", name, truncateChars(raw, 80))
		return nil, nil
	}
	if score == 0 {
		return nil, nil
	}

	return &domain.SmartSearchResult{
		Document:       doc.Handle,
		RelevanceScore: score,
		Confidence:     fallbackConfidence,
		Summary:        degradedSummary,
		Reasoning:      "Scored with the numeric fallback prompt.",
		Degraded:       true,
	}, nil
}

func resultFromJudgement(h domain.DocumentHandle, j Judgement) *domain.SmartSearchResult {
	return &domain.SmartSearchResult{
		Document:         h,
		RelevanceScore:   j.RelevanceScore,
		Confidence:       j.Confidence,
		RelevantSections: j.RelevantSections,
		Summary:          j.Summary,
		KeyPoints:        j.KeyPoints,
		Reasoning:        j.Reasoning,
	}
}

// parseFallbackScore reads the first integer in a reply if it is within 0-100.
func parseFallbackScore(raw string) (int, bool) {
	m := fallbackScore.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 100 {
		return 0, false
	}
	return n, true
}

// stripCodeFences removes markdown code fence lines.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// firstJSONObject returns the first balanced {...} region, skipping braces in strings.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func limitSections(sections []string) []string {
	out := make([]string, 0, min(len(sections), maxRelevantSections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if words := strings.Fields(s); len(words) > maxSectionWords {
			s = strings.Join(words[:maxSectionWords], " ") + " …"
		}
		out = append(out, s)
		if len(out) == maxRelevantSections {
			break
		}
	}
	return out
}

func limitStrings(items []string, n int) []string {
	out := make([]string, 0, min(len(items), n))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == n {
			break
		}
	}
	return out
}

// truncateChars returns at most n characters of s. n <= 0 means no limit.
func truncateChars(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

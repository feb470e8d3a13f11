package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// answerTemperature keeps answers close to the source documents.
const answerTemperature = 0.3

// AskService answers questions from the user's documents.
type AskService struct {
	documents *DocumentService
	acquirer  *DocumentAcquirer
	scorer    *HeuristicScorer
	packer    *ContextPacker
	judge     *RelevanceJudge
	ranker    *Ranker
	llm       driven.CompletionService
	pipeline  domain.PipelineSettings
}

// NewAskService creates a new ask service.
// The llm parameter is optional (can be nil); Prepare then works in
// heuristic mode only and Stream fails with domain.ErrLLMUnavailable.
func NewAskService(
	documents *DocumentService,
	extractors driven.ExtractorRegistry,
	llm driven.CompletionService,
	promptStore driven.PromptStore,
	settings domain.AppSettings,
) *AskService {
	s := &AskService{
		documents: documents,
		acquirer:  NewDocumentAcquirer(extractors, settings.Pipeline.FetchConcurrency),
		scorer:    NewHeuristicScorer(settings.Scoring),
		packer:    NewContextPacker(settings.Scoring, promptStore),
		ranker:    NewRanker(settings.Ranking),
		llm:       llm,
		pipeline:  settings.Pipeline,
	}
	if llm != nil {
		s.judge = NewRelevanceJudge(llm, promptStore, settings.Pipeline.JudgeTextLimit)
	}
	return s
}

// Prepare gathers candidate documents, ranks them and packs the prompt.
func (s *AskService) Prepare(
	ctx context.Context,
	question string,
	opts domain.AskOptions,
) (*domain.PreparedAnswer, error) {
	defer logger.Stage("Prepare Answer")()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	mode := opts.Mode
	if mode == "" {
		mode = s.pipeline.DefaultMode
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, mode)
	}
	if mode == domain.AskModeSmart && s.judge == nil {
		return nil, fmt.Errorf("%w: smart mode needs a completion service", domain.ErrLLMUnavailable)
	}

	terms := ExtractTerms(question)
	logger.Debug("Mode: %s, terms: [%s]", mode, terms.Join(", "))

	budget := s.pipeline.MaxContextChars
	if budget <= 0 {
		return nil, fmt.Errorf("%w: context budget must be positive", domain.ErrInvalidInput)
	}
	if err := s.checkHeader(question, terms, 1, budget); err != nil {
		return nil, err
	}

	maxFiles := opts.MaxDocuments
	if maxFiles <= 0 {
		maxFiles = s.pipeline.MaxFiles
	}
	store, credential, handles, err := s.documents.candidates(ctx, opts.Source, maxFiles)
	if err != nil {
		return nil, err
	}
	// The header grows with the digits of the document count.
	if err := s.checkHeader(question, terms, len(handles), budget); err != nil {
		return nil, err
	}

	docs, err := s.acquirer.Acquire(ctx, store, credential, handles)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			s.documents.forgetCredential(ctx)
		}
		return nil, err
	}

	prepared := &domain.PreparedAnswer{Question: question, Mode: mode, Terms: terms}

	var scored []domain.ScoredDocument
	var details map[string]domain.SmartSearchResult
	switch mode {
	case domain.AskModeSmart:
		results, err := s.judge.JudgeAll(ctx, docs, question, s.pipeline.JudgeConcurrency)
		if err != nil {
			return nil, err
		}
		ranked := s.ranker.Rank(results)
		prepared.Ranking = &ranked.Meta
		scored, details = smartScored(docs, ranked)
		logger.Debug("Smart ranking kept %d of %d documents", len(scored), len(docs))
	default:
		scored = s.scorer.ScoreAll(docs, terms)
	}

	packed, err := s.packer.Pack(scored, question, terms, budget)
	if err != nil {
		return nil, err
	}
	if len(packed.Included) == 0 && len(scored) > 0 {
		logger.Warn("No document fits the %d character budget", budget)
	}

	prepared.Prompt = packed
	prepared.Sources = sourceRefs(scored, len(packed.Included), details)
	prepared.NoSources = len(prepared.Sources) == 0
	logger.Info("Prompt: %d chars, %d sources, %d omitted", packed.Len(), len(packed.Included), len(packed.Omitted))
	return prepared, nil
}

// checkHeader fails with ErrBudgetExceeded when the header for docCount
// documents, or for none, does not fit the budget.
func (s *AskService) checkHeader(question string, terms domain.SearchTermSet, docCount, budget int) error {
	needed := max(s.packer.HeaderLength(question, terms, 0), s.packer.HeaderLength(question, terms, docCount))
	if needed > budget {
		return fmt.Errorf("%w: question needs %d of %d characters", domain.ErrBudgetExceeded, needed, budget)
	}
	return nil
}

// Stream sends the prepared prompt to the completion service.
func (s *AskService) Stream(ctx context.Context, prepared *domain.PreparedAnswer) (<-chan domain.AnswerUpdate, error) {
	if prepared == nil {
		return nil, fmt.Errorf("%w: nothing prepared", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	events, err := s.llm.Stream(ctx, prepared.Prompt.Text, driven.GenerateOptions{Temperature: answerTemperature})
	if err != nil {
		return nil, fmt.Errorf("start answer stream: %w", err)
	}
	return relayAnswer(ctx, events), nil
}

// Ask prepares and streams an answer, waiting for it to complete.
func (s *AskService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	prepared, err := s.Prepare(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	updates, err := s.Stream(ctx, prepared)
	if err != nil {
		return nil, err
	}
	text, err := CollectAnswer(updates)
	if err != nil {
		return nil, err
	}
	return prepared.Finish(text, time.Now()), nil
}

// smartScored turns ranked results into packer input, in ranked order,
// with the rescaled score and the judge's summary as notes.
func smartScored(
	docs []domain.ExtractedDocument,
	ranked domain.RankedResults,
) ([]domain.ScoredDocument, map[string]domain.SmartSearchResult) {
	byID := make(map[string]domain.ExtractedDocument, len(docs))
	for _, d := range docs {
		byID[d.Handle.ID] = d
	}

	scored := make([]domain.ScoredDocument, 0, len(ranked.Results))
	details := make(map[string]domain.SmartSearchResult, len(ranked.Results))
	for _, r := range ranked.Results {
		doc, ok := byID[r.Document.ID]
		if !ok {
			continue
		}
		scored = append(scored, domain.ScoredDocument{Document: doc, Score: r.RelevanceScore, Notes: judgementNotes(r)})
		details[r.Document.ID] = r
	}
	return scored, details
}

func judgementNotes(r domain.SmartSearchResult) string {
	var b strings.Builder
	if r.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
	}
	for _, p := range r.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "Confidence: %d", r.Confidence)
	return b.String()
}

// sourceRefs describes the first n documents in packing order.
func sourceRefs(
	scored []domain.ScoredDocument,
	n int,
	details map[string]domain.SmartSearchResult,
) []domain.SourceRef {
	ordered := sortByScore(scored)
	refs := make([]domain.SourceRef, 0, n)
	for _, d := range ordered[:min(n, len(ordered))] {
		ref := domain.SourceRef{
			Name:    d.Document.Handle.DisplayName,
			Locator: d.Document.Handle.LocatorPath,
			Score:   d.Score,
		}
		if r, ok := details[d.Document.Handle.ID]; ok {
			ref.Confidence = r.Confidence
			ref.Summary = r.Summary
		}
		refs = append(refs, ref)
	}
	return refs
}

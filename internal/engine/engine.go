// Package engine orchestrates the answer pipeline: screen the query,
// retrieve context, generate under policy constraints, and filter the output.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/torii-sec/mamori/internal/detect"
	"github.com/torii-sec/mamori/internal/embedding"
	"github.com/torii-sec/mamori/internal/models"
	"github.com/torii-sec/mamori/internal/oracle"
	"github.com/torii-sec/mamori/internal/session"
)

const (
	// DefaultTopK is the number of chunks retrieved per query.
	DefaultTopK = 5

	// noContextAnswer is returned without invoking the oracle when
	// retrieval yields nothing.
	noContextAnswer = "No relevant information found in the loaded documents."

	// degradedAnswer is returned when the oracle is unavailable. Retrieved
	// sources are still reported so the caller can consult them directly.
	degradedAnswer = "The answer could not be generated because the language model is unavailable. The retrieved sources are listed below; please try again later."
)

// Engine answers questions over the session corpus.
type Engine struct {
	session  *session.Session
	embedder embedding.Embedder
	oracle   oracle.Oracle
	topK     int
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTopK overrides the retrieval depth.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// New creates an Engine.
func New(sess *session.Session, embedder embedding.Embedder, orc oracle.Oracle, opts ...Option) *Engine {
	e := &Engine{
		session:  sess,
		embedder: embedder,
		oracle:   orc,
		topK:     DefaultTopK,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask runs the full pipeline for one query. Oracle unavailability yields a
// degraded result rather than an error; embedding and index failures are
// returned as errors matching ErrEmbedding and ErrIndex.
func (e *Engine) Ask(ctx context.Context, query string) (*models.AnswerResult, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	result := &models.AnswerResult{Query: query}

	// Screen the query. A sensitive query is never rejected outright; it
	// escalates prompt strictness and is flagged in the result.
	queryVerdict := detect.Detect(query)
	if queryVerdict.Sensitive {
		result.SensitivityFlagged = true
		result.FlaggedCategories = append(result.FlaggedCategories, queryVerdict.Categories...)
		e.session.Audit().Record(models.SeverityWarning,
			fmt.Sprintf("Query touches sensitive categories: %s", strings.Join(queryVerdict.Categories, ", ")))
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.session.Audit().Record(models.SeverityError, "Query embedding failed")
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	chunks, err := e.session.SearchChunks(ctx, queryVec, e.topK)
	if err != nil {
		e.session.Audit().Record(models.SeverityError, "Vector index search failed")
		return nil, fmt.Errorf("%w: %v", ErrIndex, err)
	}
	if len(chunks) == 0 {
		result.NoContext = true
		result.FilteredAnswer = noContextAnswer
		result.QueryTime = time.Since(start).Milliseconds()
		e.session.Audit().Record(models.SeverityInfo, "Query answered with no matching context")
		return result, nil
	}
	result.Chunks = chunks

	// Screen the retrieved context. Chunks are never dropped; sensitivity
	// tightens the prompt and is flagged in the result.
	var contextText strings.Builder
	for _, ch := range chunks {
		contextText.WriteString(ch.Text)
		contextText.WriteByte('\n')
	}
	contextVerdict := detect.Detect(contextText.String())
	if contextVerdict.Sensitive {
		result.SensitivityFlagged = true
		result.FlaggedCategories = mergeCategories(result.FlaggedCategories, contextVerdict.Categories)
		e.session.Audit().Record(models.SeverityWarning,
			fmt.Sprintf("Retrieved context touches sensitive categories: %s", strings.Join(contextVerdict.Categories, ", ")))
	}

	prompt := buildPrompt(query, chunks, result.SensitivityFlagged)
	raw, err := e.oracle.Complete(ctx, prompt)
	if err != nil {
		// Graceful degradation: the caller still gets the sources.
		e.logger.Warn("oracle unavailable", zap.Error(err))
		e.session.Audit().Record(models.SeverityError, "Answer generation failed")
		result.Degraded = true
		result.FilteredAnswer = degradedAnswer
		result.QueryTime = time.Since(start).Milliseconds()
		return result, nil
	}
	result.RawAnswer = raw

	// Post-filter: the authoritative guard. The output is re-screened, and
	// once any stage has flagged the exchange the answer always goes through
	// masking, so an identifier echoed without its keyword cannot slip out.
	outputVerdict := detect.Detect(raw)
	if outputVerdict.Sensitive {
		result.SensitivityFlagged = true
		result.FlaggedCategories = mergeCategories(result.FlaggedCategories, outputVerdict.Categories)
	}
	if result.SensitivityFlagged {
		result.FilteredAnswer = detect.Mask(raw)
		if result.FilteredAnswer != raw {
			e.session.Audit().Record(models.SeverityWarning,
				"Generated answer contained sensitive values; masking applied")
		}
	} else {
		result.FilteredAnswer = raw
	}

	took := time.Since(start)
	result.QueryTime = took.Milliseconds()
	e.session.Audit().Record(models.SeveritySuccess,
		fmt.Sprintf("Answered query using %d chunks in %s", len(chunks), took.Round(time.Millisecond)))
	e.logger.Info("query answered",
		zap.Int("chunks", len(chunks)),
		zap.Bool("flagged", result.SensitivityFlagged),
		zap.Duration("took", took))
	return result, nil
}

// mergeCategories appends the categories from next not already present.
func mergeCategories(have, next []string) []string {
	for _, c := range next {
		found := false
		for _, h := range have {
			if h == c {
				found = true
				break
			}
		}
		if !found {
			have = append(have, c)
		}
	}
	return have
}

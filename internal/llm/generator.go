package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"docchat/internal/contextutil"
)

// ErrGenerationUnavailable is returned when every candidate model failed to
// produce a completion.
var ErrGenerationUnavailable = errors.New("no generation model available")

const answerSystemPrompt = `You are a helpful assistant that answers questions using only the provided context.
If the context does not contain the information needed to answer, say that you don't know based on the available documents.
Do not use outside knowledge and do not make up information.`

const summarySystemPrompt = `You are a helpful assistant that summarizes documents.
Produce a concise summary as bullet points covering the key topics, findings and conclusions.
Use only the provided text.`

// Result is one successful generation, tagged with the model that served it.
type Result struct {
	Text  string
	Model string
}

// Generator produces grounded answers and summaries using a ranked list of
// candidate models. The ranking is refined once per process by asking the
// provider which models it serves; per request, candidates are tried in
// order until one succeeds.
type Generator struct {
	client     Client
	candidates []string
	budget     int // summary input budget in runes before map-reduce kicks in

	mu      sync.Mutex
	probed  bool
	probing bool
	ranked  []string
}

// NewGenerator builds a Generator over the given ranked model candidates.
func NewGenerator(client Client, candidates []string, summaryBudget int) *Generator {
	return &Generator{
		client:     client,
		candidates: candidates,
		budget:     summaryBudget,
	}
}

// Answer generates a grounded answer to question from the given context
// passages, in ranked order of relevance.
func (g *Generator) Answer(ctx context.Context, question string, contexts []string) (*Result, error) {
	prompt := fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s", strings.Join(contexts, "\n\n---\n\n"), question)
	return g.complete(ctx, []Message{
		{Role: RoleSystem, Content: answerSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
}

// Summarize produces a bullet-point summary of text. Text larger than the
// input budget is summarized in sections first, then the section summaries
// are combined into one.
func (g *Generator) Summarize(ctx context.Context, text string) (*Result, error) {
	runes := []rune(text)
	if len(runes) <= g.budget {
		return g.summarizeOnce(ctx, text)
	}

	var sections []string
	for start := 0; start < len(runes); start += g.budget {
		end := start + g.budget
		if end > len(runes) {
			end = len(runes)
		}
		partial, err := g.summarizeOnce(ctx, string(runes[start:end]))
		if err != nil {
			return nil, err
		}
		sections = append(sections, partial.Text)
	}

	return g.complete(ctx, []Message{
		{Role: RoleSystem, Content: summarySystemPrompt},
		{Role: RoleUser, Content: "Combine these section summaries of one document into a single summary:\n\n" + strings.Join(sections, "\n\n")},
	})
}

func (g *Generator) summarizeOnce(ctx context.Context, text string) (*Result, error) {
	return g.complete(ctx, []Message{
		{Role: RoleSystem, Content: summarySystemPrompt},
		{Role: RoleUser, Content: "Summarize the following document:\n\n" + text},
	})
}

// complete tries each ranked candidate in order until one succeeds.
func (g *Generator) complete(ctx context.Context, messages []Message) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for _, model := range g.rankedModels(ctx) {
		text, err := g.client.Complete(ctx, model, messages)
		if err != nil {
			logger.Warn("model failed, trying next candidate", "model", model, "error", err)
			lastErr = err
			continue
		}
		return &Result{Text: text, Model: model}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, lastErr)
	}
	return nil, ErrGenerationUnavailable
}

// rankedModels returns the candidate list, reordered once per process so
// models the provider reports as served come first. Configured order is
// preserved within each group; a failed probe leaves the configured order.
// The first caller runs the probe without holding the mutex; requests that
// arrive while it is in flight proceed with the configured order instead
// of waiting on the network call.
func (g *Generator) rankedModels(ctx context.Context) []string {
	g.mu.Lock()
	if g.probed {
		ranked := g.ranked
		g.mu.Unlock()
		return ranked
	}
	if g.probing {
		g.mu.Unlock()
		return g.candidates
	}
	g.probing = true
	g.mu.Unlock()

	ranked := g.probe(ctx)

	g.mu.Lock()
	g.ranked = ranked
	g.probed = true
	g.probing = false
	g.mu.Unlock()
	return ranked
}

// probe asks the provider which models it serves and reorders the
// configured candidates accordingly.
func (g *Generator) probe(ctx context.Context) []string {
	available, err := g.client.ListModels(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).Warn("model listing failed, keeping configured order", "error", err)
		return g.candidates
	}

	served := make(map[string]bool, len(available))
	for _, id := range available {
		served[id] = true
	}

	ranked := make([]string, 0, len(g.candidates))
	var unserved []string
	for _, model := range g.candidates {
		if served[model] {
			ranked = append(ranked, model)
		} else {
			unserved = append(unserved, model)
		}
	}
	return append(ranked, unserved...)
}

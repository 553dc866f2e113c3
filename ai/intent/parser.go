package intent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/shopchat/ai/internal/strutil"
	"github.com/hrygo/shopchat/ai/llm"
)

// ErrNoOperations is returned when the registry snapshot is empty. This is
// the one terminal condition: with no registered operations there is
// nothing to route to.
var ErrNoOperations = fmt.Errorf("no operations available")

// Parser converts free text into an Intent. It never fails once at least
// one operation is registered: any classification error degrades to the
// default intent instead of propagating.
type Parser struct {
	llm     llm.Service
	catalog Catalog
}

// NewParser creates a parser over the given completion service and
// operation catalog. A nil llm service is allowed; every request then takes
// the fallback path.
func NewParser(svc llm.Service, catalog Catalog) *Parser {
	return &Parser{llm: svc, catalog: catalog}
}

// Parse runs the full pipeline: LLM classification, deterministic
// augmentation, argument sanitation. On classification failure it returns
// the default intent (first registered operation, read, no args) annotated
// with the error detail.
func (p *Parser) Parse(ctx context.Context, query string) (*Intent, error) {
	snapshot := p.catalog.Snapshot()
	if len(snapshot) == 0 {
		return nil, ErrNoOperations
	}

	if p.llm == nil {
		return p.defaultIntent("llm not configured"), nil
	}

	start := time.Now()
	raw, err := p.classify(ctx, query)
	if err != nil {
		slog.Warn("intent classification failed, using default intent",
			"query", strutil.Truncate(query, 80),
			"error", err,
		)
		return p.defaultIntent(fmt.Sprintf("failed to parse query: %v", err)), nil
	}

	it := &Intent{
		Operation: raw.operationName(),
		Action:    NormalizeAction(raw.Action),
		Args:      raw.Args,
		Source:    "llm",
	}
	if it.Args == nil {
		it.Args = map[string]any{}
	}

	// The model occasionally invents an operation name. Coerce to the
	// default rather than failing the whole request.
	if _, known := snapshot[it.Operation]; !known {
		slog.Debug("model chose unknown operation, coercing to default",
			"chosen", it.Operation,
			"default", p.catalog.DefaultOperation(),
		)
		it.Operation = p.catalog.DefaultOperation()
	}

	augment(query, it)
	NormalizeArgNames(it.Operation, it.Args)
	it.Args = SanitizeArgs(it.Operation, it.Args)

	slog.Debug("intent parsed",
		"query", strutil.Truncate(query, 80),
		"operation", it.Operation,
		"action", it.Action,
		"args_count", len(it.Args),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return it, nil
}

// classify performs the single LLM call and decodes its JSON payload.
func (p *Parser) classify(ctx context.Context, query string) (*rawIntent, error) {
	messages := []llm.Message{
		llm.SystemPrompt(buildSystemPrompt(p.catalog)),
		llm.UserMessage(buildUserPrompt(query)),
	}

	resp, err := p.llm.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	raw, err := decodeIntent(cleanJSON(resp))
	if err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return raw, nil
}

// defaultIntent is the guaranteed-safe fallback: first registered
// operation, read action, empty arguments.
func (p *Parser) defaultIntent(detail string) *Intent {
	return &Intent{
		Operation: p.catalog.DefaultOperation(),
		Action:    ActionRead,
		Args:      map[string]any{},
		Err:       detail,
		Source:    "fallback",
	}
}

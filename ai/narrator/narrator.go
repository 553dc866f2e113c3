// Package narrator turns raw query results into a short natural-language
// summary. It makes at most one model call per request and always has a
// templated fallback, so a narration failure never fails the request.
package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/ai/internal/strutil"
	"github.com/hrygo/shopchat/ai/llm"
)

const systemPrompt = `You are a helpful assistant that summarizes database operation results for business users.
Given the user's original question and the structured result of the operation, write ONE short, friendly sentence describing the outcome.
Mention concrete values (names, counts, totals) when they are present in the result.
Do not mention SQL, databases, tables, or internal identifiers. Do not use markdown.`

// maxResultChars bounds how much of the result payload is sent to the
// model; large result sets are truncated rather than narrated in full.
const maxResultChars = 4000

// Narrator summarizes operation results in natural language.
type Narrator struct {
	llm llm.Service
}

// NewNarrator creates a narrator backed by the given model service. A nil
// service is valid; narration then always uses the templated fallback.
func NewNarrator(svc llm.Service) *Narrator {
	return &Narrator{llm: svc}
}

// Narrate produces a one-sentence summary of a completed operation. It
// never returns an error: if the model is unavailable or misbehaves, a
// fixed per-action template is used instead. The second return value
// reports whether the fallback was used.
func (n *Narrator) Narrate(ctx context.Context, result any, action intent.Action, operation, query string) (string, bool) {
	if n.llm == nil {
		return fallbackSummary(action, operation), true
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Warn("narration payload marshal failed", "operation", operation, "error", err)
		return fallbackSummary(action, operation), true
	}
	body := strutil.Truncate(string(payload), maxResultChars)

	userPrompt := fmt.Sprintf("User question: %s\n\nOperation: %s (%s)\nResult:\n%s", query, operation, action, body)
	reply, err := n.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(systemPrompt),
		llm.UserMessage(userPrompt),
	})
	if err != nil {
		slog.Warn("narration failed, using template", "operation", operation, "error", err)
		return fallbackSummary(action, operation), true
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fallbackSummary(action, operation), true
	}
	return reply, false
}

func fallbackSummary(action intent.Action, operation string) string {
	switch action {
	case intent.ActionRead:
		return fmt.Sprintf("Successfully retrieved data from %s.", operation)
	case intent.ActionCreate:
		return fmt.Sprintf("Successfully created record using %s.", operation)
	case intent.ActionUpdate:
		return fmt.Sprintf("Successfully updated record using %s.", operation)
	case intent.ActionDelete:
		return fmt.Sprintf("Successfully deleted record using %s.", operation)
	case intent.ActionDescribe:
		return fmt.Sprintf("Retrieved schema information from %s.", operation)
	default:
		return fmt.Sprintf("Operation completed successfully using %s.", operation)
	}
}

// Package intent converts free-text user requests into structured CRUD
// calls: an operation name, an action verb and an argument map. It layers
// an LLM classifier, deterministic regex augmentation and per-operation
// argument sanitation, with an unconditional default fallback so a usable
// intent always comes back.
package intent

// Action is the operation-family-independent verb.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionDescribe Action = "describe"
)

// readSynonyms are action names the model may emit that all mean read.
var readSynonyms = map[string]bool{
	"list":    true,
	"show":    true,
	"display": true,
	"view":    true,
	"get":     true,
}

// NormalizeAction maps a raw action string onto the bounded action set.
// Unknown verbs fall back to read, the safest action.
func NormalizeAction(raw string) Action {
	if readSynonyms[raw] {
		return ActionRead
	}
	switch Action(raw) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionDescribe:
		return Action(raw)
	default:
		return ActionRead
	}
}

// Intent is the structured call derived from free text. Err annotates a
// degraded parse (fallback used, unknown operation coerced); it is never
// raised to the caller.
type Intent struct {
	Operation string         `json:"operation"`
	Action    Action         `json:"action"`
	Args      map[string]any `json:"args"`
	Err       string         `json:"error,omitempty"`
	// Source records which layer produced the intent: "llm" or "fallback".
	Source string `json:"-"`
}

// Catalog is the view of the operation registry the parser needs. The
// snapshot is immutable for the session and replaced on explicit refresh.
type Catalog interface {
	// Snapshot returns the current name -> description mapping.
	Snapshot() map[string]string
	// DescribeAll returns a numbered human-readable listing of every
	// operation, used to ground the classification prompt.
	DescribeAll() string
	// DefaultOperation returns the name intents are coerced to when the
	// model picks something outside the registry.
	DefaultOperation() string
}

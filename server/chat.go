package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/shopchat/ai/intent"
	"github.com/hrygo/shopchat/server/ops"
)

// ChatRequest is one natural-language query. The session id is optional;
// the server mints one when absent so clients can correlate follow-ups.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatIntent is the classified shape of the query as reported back to the
// client.
type ChatIntent struct {
	Operation  string         `json:"operation"`
	Action     string         `json:"action"`
	Args       map[string]any `json:"args"`
	Source     string         `json:"source"`
	ParseError string         `json:"parse_error,omitempty"`
}

// ChatResponse is the full outcome of one chat turn.
type ChatResponse struct {
	RequestID string        `json:"request_id"`
	SessionID string        `json:"session_id"`
	Query     string        `json:"query"`
	Intent    ChatIntent    `json:"intent"`
	Result    *ops.Envelope `json:"result"`
	Summary   string        `json:"summary"`
	LatencyMs int64         `json:"latency_ms"`
}

// handleChat runs the parse, dispatch, narrate pipeline for one query.
func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	requestID := uuid.NewString()
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = shortuuid.New()
	}

	ctx := c.Request().Context()
	start := time.Now()

	it, err := s.parser.Parse(ctx, req.Query)
	if err != nil {
		if errors.Is(err, intent.ErrNoOperations) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "no operations available").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to interpret query").SetInternal(err)
	}
	s.exporter.RecordParseResult(it.Source, it.Operation)

	dispatchStart := time.Now()
	env, err := s.dispatcher.Execute(ctx, it, req.Query)
	if err != nil {
		s.exporter.RecordDispatch(it.Operation, string(it.Action), time.Since(dispatchStart), err)
		s.exporter.RecordChatRequest(it.Operation, string(it.Action), time.Since(start), false)
		slog.Error("dispatch failed",
			"request_id", requestID,
			"operation", it.Operation,
			"action", it.Action,
			"error", err,
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "operation failed").SetInternal(err)
	}
	var backendErr error
	if env.Status == ops.StatusError {
		backendErr = errors.New(env.Message)
	}
	s.exporter.RecordDispatch(it.Operation, string(it.Action), time.Since(dispatchStart), backendErr)

	summary, fellBack := s.narrator.Narrate(ctx, env, it.Action, it.Operation, req.Query)
	if fellBack && env.Status != ops.StatusSuccess && env.Message != "" {
		// The per-action templates speak of success; a degraded envelope's
		// own message is the honest summary.
		summary = env.Message
	}
	s.exporter.RecordNarration(fellBack)
	s.exporter.RecordChatRequest(it.Operation, string(it.Action), time.Since(start), true)

	slog.Info("chat request served",
		"request_id", requestID,
		"session_id", sessionID,
		"operation", it.Operation,
		"action", it.Action,
		"status", env.Status,
		"rows", env.RowCount,
		"duration", time.Since(start),
	)

	return c.JSON(http.StatusOK, ChatResponse{
		RequestID: requestID,
		SessionID: sessionID,
		Query:     req.Query,
		Intent: ChatIntent{
			Operation:  it.Operation,
			Action:     string(it.Action),
			Args:       it.Args,
			Source:     it.Source,
			ParseError: it.Err,
		},
		Result:    env,
		Summary:   summary,
		LatencyMs: time.Since(start).Milliseconds(),
	})
}

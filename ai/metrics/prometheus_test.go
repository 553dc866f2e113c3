package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPrometheusExporter(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	t.Run("RecordChatRequest", func(t *testing.T) {
		exporter.RecordChatRequest("product_crud", "read", 100*time.Millisecond, true)
		exporter.RecordChatRequest("product_crud", "read", 200*time.Millisecond, true)
		exporter.RecordChatRequest("sales_crud", "update", 150*time.Millisecond, false)
	})

	t.Run("RecordParseResult", func(t *testing.T) {
		exporter.RecordParseResult("llm", "product_crud")
		exporter.RecordParseResult("fallback", "customer_crud")
	})

	t.Run("RecordDispatch", func(t *testing.T) {
		exporter.RecordDispatch("sales_crud", "read", 50*time.Millisecond, nil)
		exporter.RecordDispatch("sales_crud", "delete", 30*time.Millisecond, errors.New("not found"))
	})

	t.Run("RecordNarration", func(t *testing.T) {
		exporter.RecordNarration(false)
		exporter.RecordNarration(true)
	})

	t.Run("RecordCache", func(t *testing.T) {
		exporter.RecordCacheHit("customer_name")
		exporter.RecordCacheHit("customer_name")
		exporter.RecordCacheMiss("product_info")
	})

	t.Run("RecordLLMLatency", func(t *testing.T) {
		exporter.RecordLLMLatency("glm-4.7", "zai", 500*time.Millisecond)
	})
}

func TestPrometheusExporterHandler(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	exporter.RecordChatRequest("product_crud", "read", 100*time.Millisecond, true)
	exporter.RecordParseResult("llm", "product_crud")
	exporter.RecordDispatch("product_crud", "read", 50*time.Millisecond, nil)
	exporter.RecordCacheHit("customer_name")

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "shopchat_chat_requests_total") {
		t.Error("expected chat requests_total metric in output")
	}
	if !strings.Contains(body, "shopchat_intent_parse_results_total") {
		t.Error("expected parse_results_total metric in output")
	}
	if !strings.Contains(body, "shopchat_dispatch_latency_seconds") {
		t.Error("expected dispatch latency metric in output")
	}
	if !strings.Contains(body, "shopchat_store_cache_hits_total") {
		t.Error("expected cache_hits_total metric in output")
	}
}

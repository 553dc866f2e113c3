package profile

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol).
	// All providers (zai, deepseek, openai, siliconflow, ollama) use the same config.
	LLMProvider string // Provider identifier: zai, deepseek, openai, siliconflow, openrouter, ollama
	LLMAPIKey   string // Unified LLM API key
	LLMBaseURL  string // Unified LLM base URL (optional, has default per provider)
	LLMModel    string // Model name: glm-4.7, deepseek-chat, gpt-4o, etc.
	LLMTimeout  int    // LLM request timeout in seconds (default: 60)

	// Backing stores. Customers live in a local SQLite file; products and
	// sales each live in their own PostgreSQL database.
	CustomerDSN string // SQLite file path for the customer store
	ProductDSN  string // PostgreSQL DSN for the product store
	SalesDSN    string // PostgreSQL DSN for the sales store

	Mode    string // dev, demo, prod
	Addr    string
	Port    int
	Data    string // data directory, holds the customer SQLite file by default
	Version string

	// Seed demo rows into empty stores at startup.
	SeedDemoData bool
}

// Provider default configurations for LLM.
// Used when SHOPCHAT_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"zai": {
		BaseURL: "https://open.bigmodel.cn/api/paas/v4",
		Model:   "glm-4.7",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-7B-Instruct",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "openai/gpt-4o-mini",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "qwen2.5",
	},
}

// IsDev returns true unless the server runs in prod mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an LLM API key is configured.
// Without a key the parser and narrator run on their deterministic fallbacks only.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("SHOPCHAT_LLM_PROVIDER", "zai")
	p.LLMAPIKey = getEnvOrDefault("SHOPCHAT_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("SHOPCHAT_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("SHOPCHAT_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("SHOPCHAT_LLM_TIMEOUT_SECONDS", 60)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: zai", "provider", p.LLMProvider)
			p.LLMProvider = "zai"
		}
	}
	if p.LLMBaseURL == "" || p.LLMModel == "" {
		if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
			if p.LLMBaseURL == "" {
				p.LLMBaseURL = defaults.BaseURL
			}
			if p.LLMModel == "" {
				p.LLMModel = defaults.Model
			}
		}
	}

	if p.CustomerDSN == "" {
		p.CustomerDSN = getEnvOrDefault("SHOPCHAT_CUSTOMER_DSN", "")
	}
	if p.ProductDSN == "" {
		p.ProductDSN = getEnvOrDefault("SHOPCHAT_PRODUCT_DSN", "")
	}
	if p.SalesDSN == "" {
		p.SalesDSN = getEnvOrDefault("SHOPCHAT_SALES_DSN", "")
	}

	p.SeedDemoData = getEnvOrDefault("SHOPCHAT_SEED_DEMO_DATA", "true") == "true"
}

// Validate normalizes the profile and rejects configurations the server
// cannot start with.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	p.Data = strings.TrimRight(p.Data, "\\/")
	if _, err := os.Stat(p.Data); err != nil {
		return errors.Wrapf(err, "unable to access data folder %s", p.Data)
	}

	if p.CustomerDSN == "" {
		p.CustomerDSN = fmt.Sprintf("%s/shopchat_customers.db", p.Data)
	}
	if p.ProductDSN == "" {
		return errors.New("product store DSN required (SHOPCHAT_PRODUCT_DSN)")
	}
	if p.SalesDSN == "" {
		return errors.New("sales store DSN required (SHOPCHAT_SALES_DSN)")
	}

	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/shopchat/internal/profile"
	"github.com/hrygo/shopchat/internal/version"
	"github.com/hrygo/shopchat/server"
	"github.com/hrygo/shopchat/store"
	"github.com/hrygo/shopchat/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "shopchat",
	Short: `A conversational storefront assistant. Ask about customers, products, and sales in plain language.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Systemd deployments carry their environment in the unit file;
		// only load .env for direct binary execution.
		if !isRunningAsSystemdService() {
			_ = godotenv.Load()
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			CustomerDSN: viper.GetString("customer-dsn"),
			ProductDSN:  viper.GetString("product-dsn"),
			SalesDSN:    viper.GetString("sales-dsn"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			return
		}
		setupLogger(instanceProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		customers, products, sales, err := db.NewDrivers(instanceProfile)
		if err != nil {
			printDatabaseError(err)
			slog.Error("failed to open backing stores", "error", err)
			return
		}

		storeInstance := store.New(customers, products, sales, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return
		}
		if instanceProfile.SeedDemoData {
			if err := storeInstance.Seed(ctx); err != nil {
				slog.Error("failed to seed demo data", "error", err)
				return
			}
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// SIGTERM is the graceful shutdown signal for most process
		// managers, eg. systemd and Kubernetes.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			return
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory, holds the customer database file")
	rootCmd.PersistentFlags().String("customer-dsn", "", "customer database file (SQLite)")
	rootCmd.PersistentFlags().String("product-dsn", "", "product database DSN (PostgreSQL)")
	rootCmd.PersistentFlags().String("sales-dsn", "", "sales database DSN (PostgreSQL)")

	for _, flag := range []string{"mode", "addr", "port", "data", "customer-dsn", "product-dsn", "sales-dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("shopchat")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("ShopChat %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Mode: %s\n", profile.Mode)
	if profile.IsAIEnabled() {
		fmt.Printf("LLM: %s (%s)\n", profile.LLMModel, profile.LLMProvider)
	} else {
		fmt.Println("LLM: disabled, queries fall back to the default read operation")
	}

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Try: curl -X POST http://localhost:%d/api/v1/chat -d '{\"query\": \"show all products\"}' -H 'Content-Type: application/json'\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
}

// setupLogger installs the process-wide logger: human-readable at debug
// level for development, JSON at info level otherwise.
func setupLogger(profile *profile.Profile) {
	var handler slog.Handler
	if profile.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// isRunningAsSystemdService detects if the process is running under systemd.
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printDatabaseError provides actionable messages for the common
// connection failures.
func printDatabaseError(err error) {
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "PostgreSQL is not reachable. Check that the product and sales databases are running,")
		fmt.Fprintln(os.Stderr, "and that SHOPCHAT_PRODUCT_DSN / SHOPCHAT_SALES_DSN point at them.")
	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "PostgreSQL SSL configuration mismatch. Add ?sslmode=disable to the DSN for local setups.")
	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "PostgreSQL authentication failed. Check the credentials in the DSN or .env file.")
	case strings.Contains(errMsg, "does not exist"):
		fmt.Fprintln(os.Stderr, "Database does not exist. Create it before starting the server.")
	default:
		fmt.Fprintln(os.Stderr, "Database error:", errMsg)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

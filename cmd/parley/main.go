// ABOUTME: Entry point for the parley conversational relay server
// ABOUTME: Serves the WebSocket transport and the REST control plane

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                      _
  _ __   __ _ _ __| | ___ _   _
 | '_ \ / _' | '__| |/ _ \ | | |
 | |_) | (_| | |  | |  __/ |_| |
 | .__/ \__,_|_|  |_|\___|\__, |
 |_|                      |___/
`

// getConfigPath returns the path to the parley config file.
// Priority: PARLEY_CONFIG env var > XDG_CONFIG_HOME/parley/parley.yaml > ~/.config/parley/parley.yaml
func getConfigPath() string {
	if envPath := os.Getenv("PARLEY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "parley.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "parley", "parley.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: parley <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the relay server")
		fmt.Println("  health   Check relay health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to environment-driven
// defaults when no file exists at the resolved path.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), "(defaults)", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Groq:    ")
	if cfg.Groq.APIKey != "" {
		cyan.Println("configured")
	} else {
		yellow.Println("disabled (set GROQ_API_KEY)")
	}
	fmt.Println()

	logger.Info("starting parley",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"groq_configured", cfg.Groq.APIKey != "",
	)

	return gateway.New(cfg, logger).Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if addr[0] == ':' {
		addr = "localhost" + addr
	}
	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var health struct {
		Status   string          `json:"status"`
		Services map[string]bool `json:"services"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}

	fmt.Printf("%s (groq: %v)\n", health.Status, health.Services["groq"])
	return nil
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Dia struct {
	BaseURL          string `json:"base_url"`
	GraphURL         string `json:"graph_url"`
	RequestTimeoutMS int    `json:"request_timeout_ms"`
}

type Updater struct {
	IterationSec  int `json:"iteration_sec"`
	PacingDelayMS int `json:"pacing_delay_ms"`
	// SupportedCurrencies restricts aggregation to these blockchain:symbol
	// pairs. Empty means every quoted asset is aggregated.
	SupportedCurrencies []string `json:"supported_currencies"`
	// AssetsFile optionally points to a YAML allow-list merged into
	// SupportedCurrencies.
	AssetsFile string `json:"assets_file"`
}

type Config struct {
	Server  Server  `json:"server"`
	Dia     Dia     `json:"dia"`
	Updater Updater `json:"updater"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Dia: Dia{
			BaseURL:          "https://api.diadata.org",
			GraphURL:         "https://squid.subsquid.io/amplitude-squid/graphql",
			RequestTimeoutMS: 100,
		},
		Updater: Updater{
			IterationSec:  60,
			PacingDelayMS: 100,
		},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("DIA_BASE_URL"); v != "" {
		cfg.Dia.BaseURL = v
	}
	if v := os.Getenv("DIA_GRAPH_URL"); v != "" {
		cfg.Dia.GraphURL = v
	}
	if v := os.Getenv("DIA_REQUEST_TIMEOUT_MS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Dia.RequestTimeoutMS = x
		}
	}
	if v := os.Getenv("ITERATION_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Updater.IterationSec = x
		}
	}
	if v := os.Getenv("PACING_DELAY_MS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Updater.PacingDelayMS = x
		}
	}
	if v := os.Getenv("SUPPORTED_CURRENCIES"); v != "" {
		cfg.Updater.SupportedCurrencies = SplitCSV(v)
	}
	if v := os.Getenv("ASSETS_FILE"); v != "" {
		cfg.Updater.AssetsFile = v
	}
}

// SplitCSV splits a comma-separated list, trimming blanks.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

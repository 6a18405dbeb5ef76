package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"diabatcher/internal/asset"
	"diabatcher/internal/config"
	"diabatcher/internal/dia"
	"diabatcher/internal/httpx"
	"diabatcher/internal/storage"
	"diabatcher/internal/updater"
)

func main() {
	var iterationSec int
	var requestTimeoutMS int
	var pacingDelayMS int
	var supportedCSV string
	var cfgPath string

	flag.IntVar(&iterationSec, "iteration-timeout", 0, "seconds between the start of two polling iterations")
	flag.IntVar(&requestTimeoutMS, "request-timeout", 0, "per-quotation request timeout in milliseconds")
	flag.IntVar(&pacingDelayMS, "pacing-delay", -1, "milliseconds between consecutive quotation requests")
	flag.StringVar(&supportedCSV, "supported-currencies", "", "comma-separated blockchain:symbol pairs; empty accepts every quoted asset")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if iterationSec > 0 {
		cfg.Updater.IterationSec = iterationSec
	}
	if requestTimeoutMS > 0 {
		cfg.Dia.RequestTimeoutMS = requestTimeoutMS
	}
	if pacingDelayMS >= 0 {
		cfg.Updater.PacingDelayMS = pacingDelayMS
	}
	if supportedCSV != "" {
		cfg.Updater.SupportedCurrencies = config.SplitCSV(supportedCSV)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	allow, err := buildAllowSet(cfg)
	if err != nil {
		log.Fatalf("allow-set: %v", err)
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	diaClient, err := dia.NewClient(
		dia.WithBaseURL(cfg.Dia.BaseURL),
		dia.WithGraphURL(cfg.Dia.GraphURL),
		dia.WithHTTPClient(httpClient),
	)
	if err != nil {
		log.Fatalf("dia client: %v", err)
	}

	store := storage.New()
	upd, err := updater.New(updater.Config{
		IterationBudget: time.Duration(cfg.Updater.IterationSec) * time.Second,
		PacingDelay:     time.Duration(cfg.Updater.PacingDelayMS) * time.Millisecond,
		RequestTimeout:  time.Duration(cfg.Dia.RequestTimeoutMS) * time.Millisecond,
	}, diaClient, store, allow, logger)
	if err != nil {
		log.Fatalf("updater: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/currencies/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handleGetCurrencies(w, r, store)
	})
	mux.HandleFunc("/currencies", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handlePostCurrencies(w, r, store)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		upd.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// buildAllowSet merges the configured currency pairs and the optional YAML
// assets file. An empty result means open mode: aggregate everything.
func buildAllowSet(cfg config.Config) (asset.Set, error) {
	pairs := cfg.Updater.SupportedCurrencies
	var entries []config.AssetEntry
	if cfg.Updater.AssetsFile != "" {
		var err error
		entries, err = config.LoadAssetsFile(cfg.Updater.AssetsFile)
		if err != nil {
			return nil, err
		}
	}
	if len(pairs) == 0 && len(entries) == 0 {
		return nil, nil
	}

	allow := asset.NewSet()
	for _, p := range pairs {
		spec, err := asset.ParseSpecifier(p)
		if err != nil {
			return nil, err
		}
		allow.Add(spec)
	}
	for _, e := range entries {
		allow.Add(asset.Specifier{Blockchain: e.Blockchain, Symbol: e.Symbol})
	}
	return allow, nil
}

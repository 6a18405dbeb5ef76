package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"diabatcher/internal/asset"
	"diabatcher/internal/config"
	"diabatcher/internal/dia"
	"diabatcher/internal/httpx"
)

// fetch is a one-shot debugging tool: it resolves the given assets against
// the live discovery list, fetches their quotations and prints them as JSON.
func main() {
	var assetsCSV string
	var timeoutSec int
	var cfgPath string

	flag.StringVar(&assetsCSV, "assets", "Bitcoin:BTC", "comma-separated blockchain:symbol pairs")
	flag.IntVar(&timeoutSec, "timeout", 15, "overall request timeout in seconds")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	allow := asset.NewSet()
	for _, p := range config.SplitCSV(assetsCSV) {
		spec, err := asset.ParseSpecifier(p)
		if err != nil {
			log.Fatalf("assets: %v", err)
		}
		allow.Add(spec)
	}
	if len(allow) == 0 {
		log.Fatal("assets: at least one blockchain:symbol pair is required")
	}

	client, err := dia.NewClient(
		dia.WithBaseURL(cfg.Dia.BaseURL),
		dia.WithGraphURL(cfg.Dia.GraphURL),
		dia.WithHTTPClient(httpx.New(time.Duration(timeoutSec)*time.Second)),
	)
	if err != nil {
		log.Fatalf("dia client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	quotable, err := client.GetQuotableAssets(ctx)
	if err != nil {
		log.Fatalf("quotable assets: %v", err)
	}

	var quotations []dia.Quotation
	for _, quoted := range quotable {
		spec := asset.Specifier{Blockchain: quoted.Asset.Blockchain, Symbol: quoted.Asset.Symbol}
		if !allow.Contains(spec) {
			continue
		}
		q, err := client.GetQuotation(ctx, quoted)
		if err != nil {
			log.Printf("quotation %s: %v", spec, err)
			continue
		}
		quotations = append(quotations, q)
		delete(allow, spec)
	}

	// Whatever is left never shows up in discovery (fiat pairs, AMPE); try a
	// direct quotation with the identity alone.
	for spec := range allow {
		q, err := client.GetQuotation(ctx, dia.QuotedAsset{Asset: dia.Asset{
			Symbol: spec.Symbol, Blockchain: spec.Blockchain,
		}})
		if err != nil {
			log.Printf("quotation %s: %v", spec, err)
			continue
		}
		quotations = append(quotations, q)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(quotations); err != nil {
		log.Fatalf("encode: %v", err)
	}
	if len(quotations) == 0 {
		fmt.Fprintln(os.Stderr, "no quotations retrieved")
		os.Exit(1)
	}
}

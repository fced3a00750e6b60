// generate-profiles enriches the stored program catalog with
// ideal-applicant profiles. Rule extraction always runs; LLM extraction
// is on unless --no-llm is given and requires ANTHROPIC_API_KEY.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grantmatch/internal/catalog"
	"grantmatch/internal/profile"
	"grantmatch/internal/store"
	"grantmatch/internal/telemetry"
)

func main() {
	var (
		dbPath    = flag.String("db", "grantmatch.db", "SQLite database path")
		progType  = flag.String("type", "all", "Program source to process: rd, sme, or all")
		noLLM     = flag.Bool("no-llm", false, "Rule-tier extraction only, no LLM calls")
		dryRun    = flag.Bool("dry-run", false, "Generate but do not persist")
		batchSize = flag.Int("batch-size", 20, "Programs per batch")
		limit     = flag.Int("limit", 0, "Max programs to process (0 = all)")
		model     = flag.String("model", "", "Anthropic model override")
		ratesPath = flag.String("rates", "", "YAML pricing file (default: built-in rates)")
		pace      = flag.Duration("pace", time.Second, "Minimum delay between batches with LLM on")
	)
	flag.Parse()

	source, err := parseSource(*progType)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "grantmatch-generate-profiles")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		_ = shutdownTracing(flushCtx)
	}()

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	programs, err := db.ListPrograms(ctx, source)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d programs (source=%s)", len(programs), *progType)

	rates := profile.DefaultRates
	if *ratesPath != "" {
		rates, err = profile.LoadRates(*ratesPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	var completer profile.Completer
	if !*noLLM {
		c, err := profile.NewAnthropicCompleterFromEnv()
		if err != nil {
			log.Fatal(err)
		}
		completer = c
	}

	gen := profile.NewGenerator(completer, rates)
	batch := profile.NewBatchGenerator(gen, db)
	summary, err := batch.Run(ctx, programs, profile.BatchConfig{
		BatchSize: *batchSize,
		Pace:      *pace,
		DryRun:    *dryRun,
		UseLLM:    !*noLLM,
		Model:     *model,
		Limit:     *limit,
	})
	if err != nil {
		log.Fatalf("batch aborted after %d programs: %v", summary.Processed, err)
	}

	fmt.Printf("processed=%d generated=%d skipped=%d failed=%d\n",
		summary.Processed, summary.Generated, summary.Skipped, summary.Failed)
	if summary.LLMCalls > 0 {
		fmt.Printf("llm calls=%d tokens=%d/%d cost=%d KRW\n",
			summary.LLMCalls, summary.InputTokens, summary.OutputTokens, summary.TotalCostKRW)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func parseSource(t string) (catalog.ProgramSource, error) {
	switch t {
	case "rd":
		return catalog.SourceRD, nil
	case "sme":
		return catalog.SourceSME, nil
	case "all":
		return "", nil
	default:
		return "", fmt.Errorf("unknown --type %q (want rd, sme, or all)", t)
	}
}

// match ranks the stored program catalog for one organization and
// prints the result as JSON, or as a markdown/HTML report with
// --report. Algorithm selection and shadow mode come from
// MATCHING_ALGORITHM and MATCHING_SHADOW_MODE.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"grantmatch/internal/engine"
	"grantmatch/internal/funnel"
	"grantmatch/internal/report"
	"grantmatch/internal/store"
	"grantmatch/internal/telemetry"
)

func main() {
	var (
		dbPath         = flag.String("db", "grantmatch.db", "SQLite database path")
		orgID          = flag.String("org", "", "Organization ID to match (required)")
		limit          = flag.Int("limit", 10, "Max matches to return")
		minScore       = flag.Int("min-score", 0, "Minimum display score (0 = default threshold)")
		includeExpired = flag.Bool("include-expired", false, "Score expired programs with relaxed TRL gate")
		reportPath     = flag.String("report", "", "Write a report instead of JSON (.html renders HTML, else markdown)")
	)
	flag.Parse()

	if strings.TrimSpace(*orgID) == "" {
		log.Fatal("--org is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "grantmatch-match")
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

	org, err := db.GetOrganization(ctx, *orgID)
	if err != nil {
		log.Fatal(err)
	}
	programs, err := db.ListPrograms(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("matching org=%s against %d programs", org.ID, len(programs))

	opts := funnel.Options{
		IncludeExpired: *includeExpired,
		MinimumScore:   *minScore,
	}

	cfg := engine.ConfigFromEnv()
	var matches []funnel.MatchScore
	var stats funnel.Stats
	if cfg.Algorithm == engine.AlgorithmV6 && !cfg.ShadowMode {
		matches, stats = funnel.GenerateMatchesWithStats(ctx, org, programs, *limit, opts)
	} else {
		matches = engine.New(cfg, nil).Match(ctx, org, programs, *limit, opts)
		stats = funnel.Stats{Input: len(programs), Returned: len(matches)}
	}

	if *reportPath == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(matches); err != nil {
			log.Fatal(err)
		}
		return
	}

	md := report.BuildMarkdown(org, matches, stats, time.Now())
	out := md
	if strings.HasSuffix(*reportPath, ".html") {
		out, err = report.RenderHTML(md)
		if err != nil {
			log.Fatal(err)
		}
	}
	if err := os.WriteFile(*reportPath, []byte(out), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote report to %s (%d matches)", *reportPath, len(matches))
}

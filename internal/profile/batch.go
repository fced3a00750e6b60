package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"grantmatch/internal/catalog"
)

// ProfileStore is the persistence surface the batch generator writes to.
type ProfileStore interface {
	SaveProfile(ctx context.Context, programID string, doc json.RawMessage, version string, generatedAt time.Time) error
}

// BatchConfig controls one batch run.
type BatchConfig struct {
	BatchSize int           // default 20
	Pace      time.Duration // minimum delay between batches when LLM is on
	DryRun    bool
	UseLLM    bool
	Model     string
	Limit     int // 0 = no limit
}

// BatchSummary is the accounting for one run.
type BatchSummary struct {
	Processed    int
	Skipped      int
	Generated    int
	Failed       int
	LLMCalls     int
	TotalCostKRW int64
	InputTokens  int64
	OutputTokens int64
}

// BatchGenerator enriches a program list with ideal-applicant profiles.
// Runs are resumable: a program that already carries a profile at the
// current schema version is skipped, so a re-run continues where a
// previous one stopped.
type BatchGenerator struct {
	gen   *Generator
	store ProfileStore
}

func NewBatchGenerator(gen *Generator, store ProfileStore) *BatchGenerator {
	return &BatchGenerator{gen: gen, store: store}
}

// Run processes programs in batches, pacing between batches when LLM
// extraction is enabled. Cancellation is honored at batch boundaries and
// between individual programs. Per-program failures are logged and
// counted, never fatal.
func (b *BatchGenerator) Run(ctx context.Context, programs []*catalog.Program, cfg BatchConfig) (BatchSummary, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.Pace <= 0 {
		cfg.Pace = time.Second
	}

	tracer := otel.Tracer("grantmatch/profile")
	ctx, span := tracer.Start(ctx, "profile.batch")
	defer span.End()

	var summary BatchSummary
	if cfg.Limit > 0 && len(programs) > cfg.Limit {
		programs = programs[:cfg.Limit]
	}

	for start := 0; start < len(programs); start += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		end := start + cfg.BatchSize
		if end > len(programs) {
			end = len(programs)
		}

		for _, p := range programs[start:end] {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			summary.Processed++

			if p.HasIAP() && p.IdealProfileVersion == SchemaVersion {
				summary.Skipped++
				continue
			}

			if err := b.generateOne(ctx, p, cfg, &summary); err != nil {
				summary.Failed++
				log.Printf("profile batch: program=%s failed: %v", p.ID, err)
			}
		}

		if cfg.UseLLM && end < len(programs) {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.Pace):
			}
		}
	}

	span.SetAttributes(
		attribute.Int("programs.processed", summary.Processed),
		attribute.Int("programs.generated", summary.Generated),
		attribute.Int("llm.calls", summary.LLMCalls),
		attribute.Int64("llm.cost_krw", summary.TotalCostKRW),
	)
	return summary, nil
}

func (b *BatchGenerator) generateOne(ctx context.Context, p *catalog.Program, cfg BatchConfig, summary *BatchSummary) error {
	res := b.gen.Generate(ctx, p, GenerateOptions{UseLLM: cfg.UseLLM, Model: cfg.Model})
	if res.UsedLLM {
		summary.LLMCalls++
		summary.TotalCostKRW += res.LLMCostKRW
		summary.InputTokens += res.Usage.InputTokens
		summary.OutputTokens += res.Usage.OutputTokens
	}

	doc, err := json.Marshal(res.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if !cfg.DryRun && b.store != nil {
		now := time.Now()
		if err := b.store.SaveProfile(ctx, p.ID, doc, SchemaVersion, now); err != nil {
			return fmt.Errorf("persist profile: %w", err)
		}
		p.IdealProfileGeneratedAt = &now
	}

	// Keep the in-memory record current so a caller chaining into
	// matching sees the fresh profile without a reload.
	p.IdealProfile = doc
	p.IdealProfileVersion = SchemaVersion
	summary.Generated++
	return nil
}

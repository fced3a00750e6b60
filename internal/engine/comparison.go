package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"grantmatch/internal/funnel"
)

// ComparisonEntry is one program's score under both algorithms. A rank
// of 0 means the program did not surface under that algorithm.
type ComparisonEntry struct {
	ProgramID    string `json:"programId"`
	Title        string `json:"title"`
	PrimaryScore int    `json:"primaryScore"`
	ShadowScore  int    `json:"shadowScore"`
	Delta        int    `json:"delta"`
	PrimaryRank  int    `json:"primaryRank"`
	ShadowRank   int    `json:"shadowRank"`
}

// ComparisonRecord is one shadow-mode run over a single organization.
type ComparisonRecord struct {
	RunID            string            `json:"runId"`
	OrgID            string            `json:"orgId"`
	PrimaryAlgorithm string            `json:"primaryAlgorithm"`
	ShadowAlgorithm  string            `json:"shadowAlgorithm"`
	GeneratedAt      time.Time         `json:"generatedAt"`
	Entries          []ComparisonEntry `json:"entries"`
	PrimaryOnly      int               `json:"primaryOnly"`
	ShadowOnly       int               `json:"shadowOnly"`
}

// ComparisonSink receives shadow-mode comparison records.
type ComparisonSink interface {
	Emit(ctx context.Context, rec ComparisonRecord) error
}

// LogSink writes a one-line summary per record to the process log.
type LogSink struct{}

func (LogSink) Emit(_ context.Context, rec ComparisonRecord) error {
	log.Printf("engine: comparison run=%s org=%s primary=%s shadow=%s entries=%d primaryOnly=%d shadowOnly=%d",
		rec.RunID, rec.OrgID, rec.PrimaryAlgorithm, rec.ShadowAlgorithm,
		len(rec.Entries), rec.PrimaryOnly, rec.ShadowOnly)
	return nil
}

func buildComparison(orgID, primaryAlg, shadowAlg string, primary, shadow []funnel.MatchScore) ComparisonRecord {
	rec := ComparisonRecord{
		RunID:            uuid.NewString(),
		OrgID:            orgID,
		PrimaryAlgorithm: primaryAlg,
		ShadowAlgorithm:  shadowAlg,
		GeneratedAt:      time.Now(),
	}

	shadowByID := make(map[string]int, len(shadow))
	for i, m := range shadow {
		shadowByID[m.ProgramID] = i
	}

	seen := make(map[string]bool, len(primary))
	for i, m := range primary {
		seen[m.ProgramID] = true
		entry := ComparisonEntry{
			ProgramID:    m.ProgramID,
			Title:        m.Title,
			PrimaryScore: m.Score,
			PrimaryRank:  i + 1,
		}
		if j, ok := shadowByID[m.ProgramID]; ok {
			entry.ShadowScore = shadow[j].Score
			entry.ShadowRank = j + 1
		} else {
			rec.PrimaryOnly++
		}
		entry.Delta = entry.PrimaryScore - entry.ShadowScore
		rec.Entries = append(rec.Entries, entry)
	}
	for j, m := range shadow {
		if seen[m.ProgramID] {
			continue
		}
		rec.ShadowOnly++
		rec.Entries = append(rec.Entries, ComparisonEntry{
			ProgramID:   m.ProgramID,
			Title:       m.Title,
			ShadowScore: m.Score,
			ShadowRank:  j + 1,
			Delta:       -m.Score,
		})
	}
	return rec
}

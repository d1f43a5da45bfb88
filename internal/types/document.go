package types

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Document version tags
const (
	VersionStandard = "1.0"
	VersionFallback = "fallback-1.0"
)

// Package statuses
const (
	PackageStatusSuccess = "success"
	PackageStatusPartial = "partial"
	PackageStatusFailed  = "failed"
)

// DocumentMetadata holds per-document facts computed at creation time.
type DocumentMetadata struct {
	WordCount          int            `json:"word_count"`
	ReadingTimeMinutes int            `json:"reading_time_minutes"`
	Tone               string         `json:"tone,omitempty"`
	Complexity         string         `json:"complexity,omitempty"`
	GeneratedAt        time.Time      `json:"generated_at"`
	Version            string         `json:"version"`
	DurationMs         int64          `json:"duration_ms"`
	Extra              map[string]any `json:"extra,omitempty"`
}

// QualityAssessment is the heuristic score of a single document.
type QualityAssessment struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// GeneratedDocument is one finished document, either generated or a fallback.
type GeneratedDocument struct {
	ID       uuid.UUID         `json:"id"`
	Type     DocumentType      `json:"type"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata DocumentMetadata  `json:"metadata"`
	Quality  QualityAssessment `json:"quality"`
}

// IsFallback reports whether the document was produced by the fallback system.
func (d *GeneratedDocument) IsFallback() bool {
	return d.Metadata.Version == VersionFallback
}

// Clone returns a copy of d that shares no maps or slices with it.
func (d GeneratedDocument) Clone() GeneratedDocument {
	d.Metadata.Extra = maps.Clone(d.Metadata.Extra)
	d.Quality.Issues = slices.Clone(d.Quality.Issues)
	d.Quality.Suggestions = slices.Clone(d.Quality.Suggestions)
	return d
}

// Insights is the package-level summary computed after all documents exist.
type Insights struct {
	KeyThemes          []string `json:"keyThemes"`
	ConsistencyScore   float64  `json:"consistencyScore"`
	RecommendedActions []string `json:"recommendedActions"`
	MarketAlignment    string   `json:"marketAlignment"`
	StrategicPosition  string   `json:"strategicPosition"`
	RiskFactors        []string `json:"riskFactors"`
}

// PackageMetadata describes a single orchestration run.
type PackageMetadata struct {
	PackageID           uuid.UUID              `json:"package_id"`
	StartedAt           time.Time              `json:"started_at"`
	CompletedAt         time.Time              `json:"completed_at"`
	DurationMs          int64                  `json:"duration_ms"`
	RequestedCount      int                    `json:"requested_count"`
	GeneratedCount      int                    `json:"generated_count"`
	FallbackCount       int                    `json:"fallback_count"`
	Order               []DocumentType         `json:"order"`
	DocumentDurationsMs map[DocumentType]int64 `json:"document_durations_ms,omitempty"`
}

// PackageResult is the terminal output of one orchestration run.
type PackageResult struct {
	Status          string              `json:"status"`
	Documents       []GeneratedDocument `json:"documents"`
	Metadata        PackageMetadata     `json:"metadata"`
	Insights        Insights            `json:"insights"`
	Recommendations []string            `json:"recommendations"`
	Errors          []string            `json:"errors,omitempty"`
}

// Document returns the first document of type t, or nil.
func (r *PackageResult) Document(t DocumentType) *GeneratedDocument {
	for i := range r.Documents {
		if r.Documents[i].Type == t {
			return &r.Documents[i]
		}
	}
	return nil
}

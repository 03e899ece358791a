// Package reconciler orchestrates payment-to-contract linking across a batch.
//
// For each payment the service extracts entities once, scores every candidate
// contract, filters out candidates below the relevance floor, and keeps a
// ranked shortlist with the best match and a decision. Candidate contracts
// are fetched exactly once per batch through the CandidateSource interface
// and treated as an immutable snapshot for the whole run.
//
// Example usage:
//
//	service, err := reconciler.NewService(matcher.DefaultConfig(), log, 4)
//	if err != nil {
//	    return err
//	}
//	source := reconciler.NewStaticCandidateSource("contracts.csv", contracts)
//	result, err := service.Reconcile(ctx, payments, source)
package reconciler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"payment-linking-engine/internal/extract"
	"payment-linking-engine/internal/matcher"
	"payment-linking-engine/internal/models"
	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

// AlgorithmVersion tags every match result so downstream audits can tell
// which scoring revision produced a link
const AlgorithmVersion = "2.0.0"

// progressLogInterval controls how often the batch progress tracker logs
const progressLogInterval = 50

// CandidateSource supplies the contract snapshot for one batch run. It is
// called exactly once per batch; a failure is fatal for the whole batch.
type CandidateSource interface {
	// FetchCandidates returns the candidate contracts to score against
	FetchCandidates(ctx context.Context) ([]*models.Contract, error)
	// Name identifies the source in logs and errors
	Name() string
}

// StaticCandidateSource serves a fixed in-memory contract snapshot, typically
// loaded from a CSV export
type StaticCandidateSource struct {
	name      string
	contracts []*models.Contract
}

// NewStaticCandidateSource creates a source over the given contracts
func NewStaticCandidateSource(name string, contracts []*models.Contract) *StaticCandidateSource {
	return &StaticCandidateSource{name: name, contracts: contracts}
}

// FetchCandidates returns the snapshot
func (s *StaticCandidateSource) FetchCandidates(ctx context.Context) ([]*models.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*models.Contract, len(s.contracts))
	copy(out, s.contracts)
	return out, nil
}

// Name identifies the source
func (s *StaticCandidateSource) Name() string {
	return s.name
}

// MatchResult pairs one candidate contract with its similarity vector and
// decision for one payment
type MatchResult struct {
	Contract         *models.Contract        `json:"contract"`
	Similarity       matcher.SimilarityVector `json:"similarity"`
	Decision         matcher.Decision        `json:"decision"`
	DataQuality      float64                 `json:"data_quality"`
	AlgorithmVersion string                  `json:"algorithm_version"`
}

// ReconciliationReport is the full linking outcome for one payment
type ReconciliationReport struct {
	Payment        *models.Payment    `json:"payment"`
	OriginalText   string             `json:"original_text"`
	Entities       *extract.EntityBag `json:"entities"`
	Matches        []*MatchResult     `json:"matches"`
	BestMatch      *MatchResult       `json:"best_match,omitempty"`
	Insights       Insights           `json:"insights"`
	ProcessingTime time.Duration      `json:"processing_time"`
}

// BatchStats aggregates run-level metrics for one Reconcile call
type BatchStats struct {
	TotalPayments      int           `json:"total_payments"`
	MatchedPayments    int           `json:"matched_payments"`
	AutoLinked         int           `json:"auto_linked"`
	NeedsReview        int           `json:"needs_review"`
	NeedsManual        int           `json:"needs_manual"`
	Rejected           int           `json:"rejected"`
	SuccessRate        float64       `json:"success_rate"`
	AverageConfidence  float64       `json:"average_confidence"`
	AverageDataQuality float64       `json:"average_data_quality"`
	Duration           time.Duration `json:"duration"`
	Throughput         float64       `json:"throughput_per_second"`
}

// BatchResult is the outcome of one Reconcile call
type BatchResult struct {
	Reports []*ReconciliationReport `json:"reports"`
	Stats   BatchStats              `json:"stats"`
}

// Service runs linking batches under one configuration
type Service struct {
	config  *matcher.MatchingConfig
	scorer  *matcher.Scorer
	logger  logger.Logger
	workers int
}

// NewService creates a linking service. A nil config uses defaults; workers
// below 1 uses one worker per CPU.
func NewService(config *matcher.MatchingConfig, log logger.Logger, workers int) (*Service, error) {
	if config == nil {
		config = matcher.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching_config", nil, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	return &Service{
		config:  config,
		scorer:  matcher.NewScorer(config),
		logger:  log.WithComponent("reconciler"),
		workers: workers,
	}, nil
}

// Reconcile links a batch of payments against the candidate source's contract
// snapshot. The snapshot is fetched once; a fetch failure aborts the batch.
// Cancellation is honored between payments, never inside one.
func (s *Service) Reconcile(ctx context.Context, payments []*models.Payment, source CandidateSource) (*BatchResult, error) {
	started := time.Now()

	candidates, err := source.FetchCandidates(ctx)
	if err != nil {
		return nil, errors.CandidateSourceError(errors.CodeCandidateFetchFailed, source.Name(), err)
	}

	eligible := make([]*models.Contract, 0, len(candidates))
	for _, c := range candidates {
		if c.Status.IsEligible() {
			eligible = append(eligible, c)
		}
	}

	s.logger.WithFields(logger.Fields{
		"payments":   len(payments),
		"candidates": len(eligible),
		"workers":    s.workers,
		"source":     source.Name(),
	}).Info("starting linking batch")

	reports := make([]*ReconciliationReport, len(payments))
	tracker := logger.NewProgressTracker(s.logger, "linking", len(payments), progressLogInterval)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				reports[idx] = s.processPayment(payments[idx], eligible)
				tracker.Increment()
			}
		}()
	}

dispatch:
	for i := range payments {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	tracker.Finish()

	if err := ctx.Err(); err != nil {
		return nil, errors.LinkingError(errors.CodeBatchAborted, "payment processing", err)
	}

	result := &BatchResult{
		Reports: reports,
		Stats:   s.buildStats(reports, time.Since(started)),
	}

	s.logger.WithFields(logger.Fields{
		"matched":        result.Stats.MatchedPayments,
		"total":          result.Stats.TotalPayments,
		"success_rate":   result.Stats.SuccessRate,
		"avg_confidence": result.Stats.AverageConfidence,
		"per_second":     result.Stats.Throughput,
	}).Info("linking batch finished")

	return result, nil
}

// processPayment runs the extract/score/decide pipeline for one payment
// against the shared candidate snapshot
func (s *Service) processPayment(payment *models.Payment, candidates []*models.Contract) *ReconciliationReport {
	start := time.Now()
	text := payment.MatchText()
	bag := extract.Extract(text)
	quality := DataQuality(bag)

	matches := make([]*MatchResult, 0)
	for _, contract := range candidates {
		similarity := s.scorer.Score(bag, contract)
		if similarity.Overall < s.config.RelevanceFloor {
			continue
		}
		matches = append(matches, &MatchResult{
			Contract:         contract,
			Similarity:       similarity,
			Decision:         s.scorer.Decide(similarity, bag),
			DataQuality:      quality,
			AlgorithmVersion: AlgorithmVersion,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity.Overall > matches[j].Similarity.Overall
	})
	if len(matches) > s.config.TopMatches {
		matches = matches[:s.config.TopMatches]
	}

	var best *MatchResult
	if len(matches) > 0 {
		best = matches[0]
	}

	return &ReconciliationReport{
		Payment:        payment,
		OriginalText:   text,
		Entities:       bag,
		Matches:        matches,
		BestMatch:      best,
		Insights:       BuildInsights(text, bag, best),
		ProcessingTime: time.Since(start),
	}
}

func (s *Service) buildStats(reports []*ReconciliationReport, duration time.Duration) BatchStats {
	stats := BatchStats{
		TotalPayments: len(reports),
		Duration:      duration,
	}
	if len(reports) == 0 {
		return stats
	}

	confidenceSum := 0.0
	qualitySum := 0.0
	for _, report := range reports {
		qualitySum += report.Insights.DataQuality

		if report.BestMatch == nil {
			stats.Rejected++
			continue
		}

		confidence := report.BestMatch.Decision.Confidence
		confidenceSum += confidence
		if confidence >= s.config.ReviewConfidence {
			stats.MatchedPayments++
		}

		switch report.BestMatch.Decision.Action {
		case matcher.ActionAutoLink:
			stats.AutoLinked++
		case matcher.ActionReview:
			stats.NeedsReview++
		case matcher.ActionManual:
			stats.NeedsManual++
		default:
			stats.Rejected++
		}
	}

	total := float64(len(reports))
	stats.SuccessRate = float64(stats.AutoLinked+stats.NeedsReview) / total * 100
	stats.AverageConfidence = confidenceSum / total
	stats.AverageDataQuality = qualitySum / total
	if secs := duration.Seconds(); secs > 0 {
		stats.Throughput = total / secs
	}

	return stats
}

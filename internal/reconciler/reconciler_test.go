package reconciler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-linking-engine/internal/extract"
	"payment-linking-engine/internal/matcher"
	"payment-linking-engine/internal/models"
	"payment-linking-engine/pkg/errors"
	"payment-linking-engine/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(matcher.DefaultConfig(), logger.NewSilentLogger(), 2)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return service
}

func makePayment(id, description string) *models.Payment {
	return models.NewPayment(id, "1001",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(500), description)
}

func exactCandidate() *models.Contract {
	return &models.Contract{
		ID:              "CON-EXACT",
		ContractNumber:  "LTO123456",
		AgreementNumber: "LTO123456",
		CustomerName:    "Gulf Rent A Car",
		MonthlyAmount:   decimal.NewFromInt(500),
		StartDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:          models.ContractStatusActive,
		ContractType:    "rental",
	}
}

func suffixCandidate() *models.Contract {
	return &models.Contract{
		ID:              "CON-SUFFIX",
		ContractNumber:  "999456",
		AgreementNumber: "AGR-888456",
		CustomerName:    "Desert Line Transport",
		MonthlyAmount:   decimal.NewFromInt(800),
		StartDate:       time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:          models.ContractStatusActive,
		ContractType:    "lease",
	}
}

func unrelatedCandidate() *models.Contract {
	return &models.Contract{
		ID:             "CON-NOISE",
		ContractNumber: "777",
		CustomerName:   "Coastal Imports",
		MonthlyAmount:  decimal.NewFromInt(99),
		StartDate:      time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.ContractStatusCompleted,
		ContractType:   "lease",
	}
}

func TestReconcileRanksAndFloorsCandidates(t *testing.T) {
	service := newTestService(t)
	payment := makePayment("PAY-1", "LTO123456 rent payment 500 KWD for January 2024")
	source := NewStaticCandidateSource("test", []*models.Contract{
		unrelatedCandidate(), suffixCandidate(), exactCandidate(),
	})

	result, err := service.Reconcile(context.Background(), []*models.Payment{payment}, source)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(result.Reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(result.Reports))
	}
	report := result.Reports[0]

	// The unrelated candidate sits below the relevance floor
	if len(report.Matches) != 2 {
		t.Fatalf("got %d matches, want 2 (floor should exclude the noise candidate)", len(report.Matches))
	}

	if report.Matches[0].Contract.ID != "CON-EXACT" {
		t.Errorf("best ranked = %s, want CON-EXACT", report.Matches[0].Contract.ID)
	}
	if report.Matches[1].Contract.ID != "CON-SUFFIX" {
		t.Errorf("second ranked = %s, want CON-SUFFIX", report.Matches[1].Contract.ID)
	}
	if report.Matches[0].Similarity.Overall <= report.Matches[1].Similarity.Overall {
		t.Error("matches must be sorted descending by overall score")
	}

	if report.BestMatch == nil || report.BestMatch.Contract.ID != "CON-EXACT" {
		t.Error("best match should be the top ranked candidate")
	}
	if report.BestMatch.Decision.Action != matcher.ActionAutoLink {
		t.Errorf("best action = %s, want auto_link", report.BestMatch.Decision.Action)
	}
	if report.BestMatch.AlgorithmVersion != AlgorithmVersion {
		t.Errorf("algorithm version = %s, want %s", report.BestMatch.AlgorithmVersion, AlgorithmVersion)
	}
}

func TestReconcileTopMatchesCap(t *testing.T) {
	service := newTestService(t)
	payment := makePayment("PAY-1", "LTO123456 rent payment 500 KWD for January 2024")

	candidates := make([]*models.Contract, 0, 8)
	for i := 0; i < 8; i++ {
		c := exactCandidate()
		c.ID = fmt.Sprintf("CON-%d", i)
		candidates = append(candidates, c)
	}

	result, err := service.Reconcile(context.Background(),
		[]*models.Payment{payment}, NewStaticCandidateSource("test", candidates))
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if got := len(result.Reports[0].Matches); got != 5 {
		t.Errorf("got %d matches, want the top-5 cap", got)
	}
}

func TestReconcileSkipsIneligibleCandidates(t *testing.T) {
	service := newTestService(t)
	payment := makePayment("PAY-1", "LTO123456 rent payment 500 KWD for January 2024")

	cancelled := exactCandidate()
	cancelled.Status = models.ContractStatusCancelled

	result, err := service.Reconcile(context.Background(),
		[]*models.Payment{payment},
		NewStaticCandidateSource("test", []*models.Contract{cancelled}))
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if result.Reports[0].BestMatch != nil {
		t.Error("cancelled contracts must never be candidates")
	}
}

func TestReconcileBatchStats(t *testing.T) {
	service := newTestService(t)
	payments := []*models.Payment{
		makePayment("PAY-1", "LTO123456 rent payment 500 KWD for January 2024"),
		makePayment("PAY-2", "cash received thanks"),
	}
	source := NewStaticCandidateSource("test", []*models.Contract{exactCandidate()})

	result, err := service.Reconcile(context.Background(), payments, source)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	stats := result.Stats
	if stats.TotalPayments != 2 {
		t.Errorf("TotalPayments = %d, want 2", stats.TotalPayments)
	}
	if stats.AutoLinked != 1 {
		t.Errorf("AutoLinked = %d, want 1", stats.AutoLinked)
	}
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1 (no-evidence payment has no best match)", stats.Rejected)
	}
	if stats.MatchedPayments != 1 {
		t.Errorf("MatchedPayments = %d, want 1", stats.MatchedPayments)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("SuccessRate = %.1f, want 50", stats.SuccessRate)
	}
	if stats.AverageConfidence <= 0 {
		t.Error("AverageConfidence should be positive")
	}
	if stats.Throughput <= 0 {
		t.Error("Throughput should be positive")
	}
}

type failingSource struct{}

func (f *failingSource) FetchCandidates(ctx context.Context) ([]*models.Contract, error) {
	return nil, fmt.Errorf("connection refused")
}

func (f *failingSource) Name() string { return "broken" }

func TestReconcileCandidateSourceFailureIsFatal(t *testing.T) {
	service := newTestService(t)
	payment := makePayment("PAY-1", "LTO123456 payment")

	result, err := service.Reconcile(context.Background(), []*models.Payment{payment}, &failingSource{})
	if err == nil {
		t.Fatal("expected a fatal batch error from the failing source")
	}
	if result != nil {
		t.Error("a failed batch must not return partial results")
	}

	linkerErr, ok := errors.AsLinkerError(err)
	if !ok {
		t.Fatalf("expected a LinkerError, got %T", err)
	}
	if linkerErr.Category != errors.CategoryCandidateSource {
		t.Errorf("Category = %s, want candidate_source", linkerErr.Category)
	}
}

type ctxBlindSource struct {
	contracts []*models.Contract
}

func (s *ctxBlindSource) FetchCandidates(ctx context.Context) ([]*models.Contract, error) {
	return s.contracts, nil
}

func (s *ctxBlindSource) Name() string { return "blind" }

func TestReconcileHonorsCancellation(t *testing.T) {
	service := newTestService(t)

	payments := make([]*models.Payment, 200)
	for i := range payments {
		payments[i] = makePayment(fmt.Sprintf("PAY-%d", i), "LTO123456 rent payment 500 KWD")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Reconcile(ctx, payments,
		&ctxBlindSource{contracts: []*models.Contract{exactCandidate()}})
	if err == nil {
		t.Fatal("expected a batch-aborted error for a cancelled context")
	}

	linkerErr, ok := errors.AsLinkerError(err)
	if !ok {
		t.Fatalf("expected a LinkerError, got %T", err)
	}
	if linkerErr.Category != errors.CategoryLinking {
		t.Errorf("Category = %s, want linking", linkerErr.Category)
	}
}

func TestReconcileIsDeterministicAcrossRuns(t *testing.T) {
	service := newTestService(t)
	payments := []*models.Payment{
		makePayment("PAY-1", "LTO123456 rent payment 500 KWD for January 2024"),
		makePayment("PAY-2", "عقد 4521 دفعة إيجار شهري"),
	}
	source := NewStaticCandidateSource("test", []*models.Contract{
		exactCandidate(), suffixCandidate(), unrelatedCandidate(),
	})

	first, err := service.Reconcile(context.Background(), payments, source)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	for run := 0; run < 3; run++ {
		again, err := service.Reconcile(context.Background(), payments, source)
		if err != nil {
			t.Fatalf("Reconcile failed: %v", err)
		}
		for i := range first.Reports {
			a, b := first.Reports[i], again.Reports[i]
			if len(a.Matches) != len(b.Matches) {
				t.Fatalf("payment %d: match count changed between runs", i)
			}
			for j := range a.Matches {
				if a.Matches[j].Contract.ID != b.Matches[j].Contract.ID {
					t.Errorf("payment %d: ranking changed between runs", i)
				}
				if a.Matches[j].Similarity != b.Matches[j].Similarity {
					t.Errorf("payment %d: scores changed between runs", i)
				}
			}
		}
	}
}

func TestTextComplexity(t *testing.T) {
	if got := TextComplexity(""); got != 0 {
		t.Errorf("TextComplexity(\"\") = %.2f, want 0", got)
	}

	// 4 words, 4 unique, 1 special character: (8 + 4 + 1) / 10
	got := TextComplexity("rent payment: january 2024")
	if got != 1.3 {
		t.Errorf("TextComplexity = %.2f, want 1.3", got)
	}

	long := TextComplexity("word " + fmt.Sprintf("%0600d", 1))
	if long > 100 {
		t.Error("TextComplexity must be capped at 100")
	}
}

func TestDataQuality(t *testing.T) {
	empty := DataQuality(extract.NewEntityBag())
	if empty != 0 {
		t.Errorf("DataQuality of empty bag = %.1f, want 0", empty)
	}

	rich := extract.Extract("LTO123456 rent payment from Sun Magic 500 KWD for January 2024")
	if got := DataQuality(rich); got != 100 {
		t.Errorf("DataQuality of full bag = %.1f, want 100", got)
	}

	partial := extract.Extract("rent for January 2024")
	got := DataQuality(partial)
	if got <= 0 || got >= 100 {
		t.Errorf("DataQuality of partial bag = %.1f, want between 0 and 100", got)
	}
}

func TestRecommendations(t *testing.T) {
	empty := BuildInsights("", extract.NewEntityBag(), nil)
	if len(empty.Recommendations) != 3 {
		t.Errorf("got %d recommendations for an empty bag, want 3", len(empty.Recommendations))
	}
	if empty.ProcessingConfidence != 0 {
		t.Errorf("ProcessingConfidence without a best match = %.1f, want 0", empty.ProcessingConfidence)
	}

	rich := extract.Extract("LTO123456 rent payment 500 KWD for January 2024")
	best := &MatchResult{Decision: matcher.Decision{Confidence: 95}}
	insights := BuildInsights("LTO123456 rent payment 500 KWD", rich, best)
	if len(insights.Recommendations) != 0 {
		t.Errorf("got %d recommendations for a strong match, want 0: %v",
			len(insights.Recommendations), insights.Recommendations)
	}
	if insights.ProcessingConfidence != 95 {
		t.Errorf("ProcessingConfidence = %.1f, want 95", insights.ProcessingConfidence)
	}
}

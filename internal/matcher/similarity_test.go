package matcher

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payment-linking-engine/internal/extract"
	"payment-linking-engine/internal/models"
)

func testRentalContract() *models.Contract {
	return &models.Contract{
		ID:              "CON-1",
		ContractNumber:  "LTO123456",
		AgreementNumber: "LTO123456",
		CustomerName:    "Gulf Rent A Car",
		MonthlyAmount:   decimal.NewFromInt(500),
		StartDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:          models.ContractStatusActive,
		ContractType:    "rental",
	}
}

func TestScoreExactMatchScenario(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	bag := extract.Extract("LTO123456 rent payment 500 KWD for January 2024")
	contract := testRentalContract()

	similarity := scorer.Score(bag, contract)

	if similarity.ContractNumber < 95 {
		t.Errorf("ContractNumber = %.2f, want >= 95", similarity.ContractNumber)
	}
	if similarity.AgreementNumber < 95 {
		t.Errorf("AgreementNumber = %.2f, want >= 95", similarity.AgreementNumber)
	}
	if similarity.Amount < 90 {
		t.Errorf("Amount = %.2f, want >= 90", similarity.Amount)
	}
	if similarity.Temporal <= 0 {
		t.Errorf("Temporal = %.2f, want > 0 for a January 2024 start date", similarity.Temporal)
	}

	decision := scorer.Decide(similarity, bag)
	if decision.Action != ActionAutoLink {
		t.Errorf("Action = %s, want auto_link (confidence %.2f, risk %s)",
			decision.Action, decision.Confidence, decision.RiskLevel)
	}
	if decision.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want low", decision.RiskLevel)
	}
	if decision.Confidence < 90 {
		t.Errorf("Confidence = %.2f, want >= 90", decision.Confidence)
	}
}

func TestScoreNoIdentifiersScenario(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	bag := extract.Extract("cash received thanks")

	similarity := scorer.Score(bag, testRentalContract())

	if similarity.ContractNumber != 0 {
		t.Errorf("ContractNumber = %.2f, want 0", similarity.ContractNumber)
	}
	if similarity.AgreementNumber != 0 {
		t.Errorf("AgreementNumber = %.2f, want 0", similarity.AgreementNumber)
	}

	decision := scorer.Decide(similarity, bag)
	if decision.Action != ActionReject {
		t.Errorf("Action = %s, want reject", decision.Action)
	}
	if decision.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %s, want high", decision.RiskLevel)
	}
}

func TestScoreEmptyInputFloor(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	bag := extract.Extract("")

	// Even an active candidate must not manufacture a score from nothing
	similarity := scorer.Score(bag, testRentalContract())

	if similarity.Overall != 0 {
		t.Errorf("Overall = %.2f, want 0 for empty input", similarity.Overall)
	}

	decision := scorer.Decide(similarity, bag)
	if decision.Action != ActionReject {
		t.Errorf("Action = %s, want reject", decision.Action)
	}
	if decision.Confidence != 0 {
		t.Errorf("Confidence = %.2f, want 0", decision.Confidence)
	}
}

func TestScoreOverallIsWeightedSum(t *testing.T) {
	config := DefaultConfig()
	scorer := NewScorer(config)
	bag := extract.Extract("LTO123456 rent payment 500 KWD for January 2024 من صن ماجيك")

	similarity := scorer.Score(bag, testRentalContract())

	w := config.Weights
	expected := similarity.ContractNumber*w.ContractNumber +
		similarity.AgreementNumber*w.AgreementNumber +
		similarity.CustomerName*w.CustomerName +
		similarity.Amount*w.Amount +
		similarity.Temporal*w.Temporal +
		similarity.Contextual*w.Contextual

	if math.Abs(similarity.Overall-expected) > 1e-9 {
		t.Errorf("Overall = %.6f, want weighted sum %.6f", similarity.Overall, expected)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	bag := extract.Extract("LTO123456 rent payment 500 KWD for January 2024")
	contract := testRentalContract()

	first := scorer.Score(bag, contract)
	for i := 0; i < 5; i++ {
		if again := scorer.Score(bag, contract); again != first {
			t.Fatal("scoring the same bag and candidate must be deterministic")
		}
	}
}

func TestScoreAmountTolerance(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	contract := testRentalContract() // monthly 500, 10% tolerance

	// 550 sits exactly on the tolerance boundary
	within := scorer.Score(extract.Extract("amount: 550"), contract)
	expected := (1 - 0.1) * 0.90 * 100
	if math.Abs(within.Amount-expected) > 0.0001 {
		t.Errorf("Amount at boundary = %.4f, want %.4f", within.Amount, expected)
	}

	// 551 falls outside it
	outside := scorer.Score(extract.Extract("amount: 551"), contract)
	if outside.Amount != 0 {
		t.Errorf("Amount outside tolerance = %.2f, want 0", outside.Amount)
	}
}

func TestScoreAmountZeroReference(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	contract := testRentalContract()
	contract.MonthlyAmount = decimal.Zero
	contract.ContractAmount = decimal.Zero

	similarity := scorer.Score(extract.Extract("amount: 500"), contract)
	if similarity.Amount != 0 {
		t.Errorf("Amount with zero reference = %.2f, want 0", similarity.Amount)
	}
}

func TestScoreTemporalWindow(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	contract := testRentalContract()
	contract.StartDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	// 2024-01-01 is 182 days before the start date
	bag := extract.Extract("paid for January 2024")
	similarity := scorer.Score(bag, contract)
	expected := (1 - 182.0/365.0) * 0.95 * 100
	if math.Abs(similarity.Temporal-expected) > 0.0001 {
		t.Errorf("Temporal = %.4f, want %.4f", similarity.Temporal, expected)
	}

	// Beyond the window scores nothing
	far := testRentalContract()
	far.StartDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	outside := scorer.Score(bag, far)
	if outside.Temporal != 0 {
		t.Errorf("Temporal outside window = %.2f, want 0", outside.Temporal)
	}
}

func TestScoreAgreementSuffixLadder(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	contract := testRentalContract()
	contract.AgreementNumber = "AGR-999456"

	// Extracted agreement 123456 shares only the 3-character suffix
	bag := extract.Extract("agreement# 123456")
	similarity := scorer.Score(bag, contract)

	expected := 0.85 * 70
	if math.Abs(similarity.AgreementNumber-expected) > 0.0001 {
		t.Errorf("AgreementNumber = %.4f, want suffix score %.4f", similarity.AgreementNumber, expected)
	}
}

func TestScoreEmptyCandidateIdentifiers(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	contract := testRentalContract()
	contract.ContractNumber = ""
	contract.AgreementNumber = ""

	bag := extract.Extract("LTO123456 payment")
	similarity := scorer.Score(bag, contract)

	if similarity.ContractNumber != 0 || similarity.AgreementNumber != 0 {
		t.Errorf("empty candidate identifiers must score 0, got cn=%.2f an=%.2f",
			similarity.ContractNumber, similarity.AgreementNumber)
	}
}

func TestScoreContextualBonuses(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	// Rent signal against an active rental: 20 + 10
	rental := testRentalContract()
	bag := extract.Extract("monthly rent payment 500")
	if got := scorer.Score(bag, rental).Contextual; got != 30 {
		t.Errorf("Contextual for rent+rental+active = %.2f, want 30", got)
	}

	// Late-fee signal against an overdue contract: 15, no active bonus
	overdue := testRentalContract()
	overdue.Status = models.ContractStatusOverdue
	overdue.ContractType = "lease"
	lateBag := extract.Extract("late fine payment")
	if got := scorer.Score(lateBag, overdue).Contextual; got != 15 {
		t.Errorf("Contextual for late_fee+overdue = %.2f, want 15", got)
	}
}

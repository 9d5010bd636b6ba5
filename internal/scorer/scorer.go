// Package scorer maps raw metric values and qualitative inputs onto bounded
// sub-scores via fixed breakpoints and combines them into a final score and
// an approve/deny decision. Scoring never fails: undefined metrics degrade
// to documented default sub-scores.
package scorer

import (
	"math"

	"github.com/mamamboga/statement-scorer/internal/models"
)

// Config controls the scoring variant. The nominal score ceiling is 96
// without the P2P component and 100 with it, while the approval threshold
// does not move with the ceiling; both knobs are exposed so a deployment
// can align them deliberately.
type Config struct {
	IncludeP2P        bool
	ApprovalThreshold float64
}

// DefaultConfig matches the shipped variant: no P2P sub-score, approval at
// 50 points.
func DefaultConfig() Config {
	return Config{IncludeP2P: false, ApprovalThreshold: 50}
}

// Familiarity is the neighbor's stated familiarity with the applicant,
// a five-point ordinal scale.
type Familiarity int

const (
	FamiliarityUnknown    Familiarity = 0
	FamiliarityBarely     Familiarity = 1
	FamiliaritySlightly   Familiarity = 2
	FamiliarityModerately Familiarity = 3
	FamiliarityWell       Familiarity = 4
	FamiliarityVeryWell   Familiarity = 5
)

// ParseFamiliarity maps the interview answer onto the ordinal scale.
// Unrecognized answers score zero.
func ParseFamiliarity(s string) Familiarity {
	switch normalize(s) {
	case "barely":
		return FamiliarityBarely
	case "slightly":
		return FamiliaritySlightly
	case "moderately":
		return FamiliarityModerately
	case "well":
		return FamiliarityWell
	case "very well":
		return FamiliarityVeryWell
	default:
		return FamiliarityUnknown
	}
}

// Inputs are the manually collected qualitative values. Ability and
// willingness answers are on a 1-10 scale.
type Inputs struct {
	BusinessAgeMonths   float64
	AvgDailyStockValue  float64
	NeighborAbility     float64
	NeighborWillingness float64
	NeighborFamiliarity Familiarity
	OfficerAbility      float64
	OfficerWillingness  float64
}

// Score combines the MPESA-derived sub-scores with the qualitative inputs
// into the final result. It is a pure function of its arguments.
func Score(in Inputs, ms models.MetricSet, cfg Config) models.ScoreResult {
	b := models.ScoreBreakdown{
		BusinessAge:         businessAgeScore(in.BusinessAgeMonths),
		StockValue:          stockValueScore(in.AvgDailyStockValue),
		NeighborAbility:     tenPointScale(in.NeighborAbility),
		NeighborWillingness: tenPointScale(in.NeighborWillingness),
		NeighborFamiliarity: float64(in.NeighborFamiliarity),
		OfficerAbility:      tenPointScale(in.OfficerAbility),
		OfficerWillingness:  tenPointScale(in.OfficerWillingness),
		MpesaCashflow:       cashflowScore(ms.CashflowVolume),
		MpesaBalance:        balanceScore(ms.RollingBalanceAvg, ms.RollingBalanceDefined),
		MpesaRecency:        recencyScore(ms.DaysSinceLast),
		BasicAutoScore:      basicAutoScore(ms),
	}

	total := b.BusinessAge + b.StockValue +
		b.NeighborAbility + b.NeighborWillingness + b.NeighborFamiliarity +
		b.OfficerAbility + b.OfficerWillingness +
		b.MpesaCashflow + b.MpesaBalance + b.MpesaRecency

	if cfg.IncludeP2P {
		b.MpesaP2P = p2pScore(ms.P2PVolume)
		total += b.MpesaP2P
	}

	decision := models.DecisionDenied
	if total >= cfg.ApprovalThreshold {
		decision = models.DecisionApproved
	}

	return models.ScoreResult{
		Score:     math.Round(total*100) / 100,
		Decision:  decision,
		RiskBand:  riskBand(total),
		Breakdown: b,
	}
}

// Risk banding is display-only and stays on the fixed 60/50 breakpoints
// regardless of the configured approval threshold.
func riskBand(score float64) models.RiskBand {
	switch {
	case score >= 60:
		return models.RiskLow
	case score >= 50:
		return models.RiskModerate
	default:
		return models.RiskHigh
	}
}

// Tier boundaries are inclusive on the lower bound: a volume of exactly
// 100,000 scores 5, not 10.
func cashflowScore(volume float64) float64 {
	switch {
	case volume <= 100_000:
		return 5
	case volume <= 200_000:
		return 10
	default:
		return 16
	}
}

// balanceScore defaults to the lowest tier when no balance data existed;
// the conservative choice for an unknown balance history.
func balanceScore(avg float64, defined bool) float64 {
	if !defined {
		return 4
	}
	switch {
	case avg <= 2_000:
		return 4
	case avg <= 5_000:
		return 8
	default:
		return 16
	}
}

// recencyScore rewards recent activity. Zero days also covers the "no
// timestamps at all" case, which scores best-case by contract.
func recencyScore(days int) float64 {
	switch {
	case days <= 6:
		return 4
	case days <= 13:
		return 2
	default:
		return 0
	}
}

func p2pScore(volume float64) float64 {
	switch {
	case volume <= 50_000:
		return 1
	case volume <= 150_000:
		return 2.5
	default:
		return 4
	}
}

func businessAgeScore(months float64) float64 {
	switch {
	case months <= 11:
		return 1.25
	case months <= 23:
		return 2.5
	case months <= 35:
		return 3.75
	default:
		return 5
	}
}

func stockValueScore(value float64) float64 {
	switch {
	case value < 2_000:
		return 2
	case value < 4_000:
		return 4
	case value < 6_000:
		return 6
	case value < 8_000:
		return 8
	default:
		return 10
	}
}

// tenPointScale passes a 1-10 answer through at unit scale, clamped.
func tenPointScale(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v / 10 * 10
}

// basicAutoScore derives a 0-10 score from the income/expense ratio,
// defaulting to the midpoint when the ratio is undefined.
func basicAutoScore(ms models.MetricSet) float64 {
	if !ms.RatioDefined {
		return 5
	}
	return math.Min(10, ms.IncomeExpenseRatio*2)
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			space = len(out) > 0
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, c)
	}
	return string(out)
}

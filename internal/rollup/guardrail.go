package rollup

import "fmt"

// GuardrailResult tells the report layer whether a metric may be interpreted
// or only stated
type GuardrailResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

func pass() GuardrailResult {
	return GuardrailResult{OK: true, Reason: "ok"}
}

func fail(format string, args ...interface{}) GuardrailResult {
	return GuardrailResult{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// CanJudgeSales requires enough sales volume this month and a non-zero previous month
func CanJudgeSales(this, prev *SalesBlock, t Thresholds) GuardrailResult {
	switch {
	case this == nil:
		return fail("no sales data this month")
	case this.NetSales < t.SalesVolumeFloor:
		return fail("net sales %.0f below volume floor %.0f", this.NetSales, t.SalesVolumeFloor)
	case prev == nil || prev.NetSales <= 0:
		return fail("no previous month net sales to compare")
	}
	return pass()
}

// CanJudgeAdsAccount requires meaningful spend both absolutely and relative to sales
func CanJudgeAdsAccount(ads *AdsBlock, sales *SalesBlock, t Thresholds) GuardrailResult {
	switch {
	case ads == nil:
		return fail("no ad data this month")
	case ads.Spend < t.AdSpendFloor:
		return fail("ad spend %.0f below spend floor %.0f", ads.Spend, t.AdSpendFloor)
	case sales == nil || sales.NetSales <= 0:
		return fail("no net sales to relate ad spend to")
	case ads.Spend/sales.NetSales < t.AdSpendRatioFloor:
		return fail("ad spend is %.1f%% of net sales, below %.1f%%", ads.Spend/sales.NetSales*100, t.AdSpendRatioFloor*100)
	}
	return pass()
}

// CanJudgeGoal gates interpretation per objective. Awareness is never
// judged; conversion also needs a minimum purchase sample.
func CanJudgeGoal(goal GoalType, b *GoalBlock, t Thresholds) GuardrailResult {
	if goal == GoalAwareness {
		return fail("awareness campaigns are reported as facts only")
	}
	if b == nil {
		return fail("no data")
	}
	if b.Spend < t.GoalSpendFloor {
		return fail("spend %.0f below goal spend floor %.0f", b.Spend, t.GoalSpendFloor)
	}
	if goal == GoalConversion && b.Purchases < t.GoalPurchaseFloor {
		return fail("%d purchases below sample floor %d", b.Purchases, t.GoalPurchaseFloor)
	}
	return pass()
}

// Guardrails collects every gate of a snapshot
type Guardrails struct {
	Sales      GuardrailResult              `json:"sales"`
	AdsAccount GuardrailResult              `json:"ads_account"`
	Goals      map[GoalType]GuardrailResult `json:"goals"`
}

// EvaluateGuardrails runs every gate over this month's facts
func EvaluateGuardrails(f Facts, t Thresholds) Guardrails {
	g := Guardrails{
		Sales:      CanJudgeSales(f.MallSales.This, f.MallSales.Prev, t),
		AdsAccount: CanJudgeAdsAccount(f.MetaAds.This, f.MallSales.This, t),
		Goals:      make(map[GoalType]GuardrailResult, len(AllGoals)),
	}
	for _, goal := range AllGoals {
		g.Goals[goal] = CanJudgeGoal(goal, f.MetaAdsGoals.This.Get(goal), t)
	}
	return g
}

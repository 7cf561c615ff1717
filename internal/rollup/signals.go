package rollup

// Signals is the small decision vector consumed by report rendering
type Signals struct {
	Guardrails                        Guardrails `json:"guardrails"`
	HasAttentionWithoutConversion     bool       `json:"has_attention_without_conversion"`
	HasEfficientConversion            bool       `json:"has_efficient_conversion"`
	HasHighAttentionAndHighConversion bool       `json:"has_high_attention_and_high_conversion"`
	AdsInterpretable                  bool       `json:"ads_interpretable"`
	AdsToSalesPct                     *float64   `json:"ads_to_sales_pct"`
	CoreDeclining                     bool       `json:"core_declining"`
	NewProductDependency              bool       `json:"new_product_dependency"`
	NewProductSharePct                *float64   `json:"new_product_share_pct"`
	NetSalesMoMPct                    *float64   `json:"net_sales_mom_pct"`
	NetSalesMoMBaseSmall              *bool      `json:"net_sales_mom_base_small"`
}

// SignalComputer derives Signals from an assembled set of facts
type SignalComputer struct {
	thresholds Thresholds
}

// NewSignalComputer creates a SignalComputer
func NewSignalComputer(t Thresholds) *SignalComputer {
	return &SignalComputer{thresholds: t}
}

// ComputeSignals evaluates guardrails and the signal vector
func (c *SignalComputer) ComputeSignals(f Facts, cmp Comparisons) Signals {
	t := c.thresholds
	s := Signals{Guardrails: EvaluateGuardrails(f, t)}

	flags := f.ViewItem.Flags
	s.HasAttentionWithoutConversion = flags.AttentionWithoutConversion
	s.HasEfficientConversion = flags.EfficientConversion
	s.HasHighAttentionAndHighConversion = flags.HighAttentionAndHighConversion

	if ads, sales := f.MetaAds.This, f.MallSales.This; ads != nil && sales != nil && sales.NetSales > 0 {
		s.AdsToSalesPct = pct(ads.Spend, sales.NetSales, 2)
		s.AdsInterpretable = ads.Spend/sales.NetSales >= t.AdsInterpretableRatio
	}

	for _, p := range f.Products.D90 {
		if p.Role == RoleCore && p.IsDeclining != nil && *p.IsDeclining {
			s.CoreDeclining = true
			break
		}
	}

	s.NewProductSharePct = newProductShare(f.Products.D30, f.Products.D90)
	s.NewProductDependency = s.NewProductSharePct != nil && *s.NewProductSharePct >= t.NewProductDependencyPct

	if d := cmp.MallSales.MoM["net_sales"]; d != nil {
		s.NetSalesMoMPct = d.Pct
	}
	s.NetSalesMoMBaseSmall = cmp.MallSales.NoteIfBaseSmallMoM
	return s
}

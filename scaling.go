package main

import "math"

// Scaler turns a one-adult baseline cost into a household cost.
// The zero value scales nothing; use NewScaler or DefaultScaling.
type Scaler struct {
	cfg ScalingConfig
}

// DefaultScaling returns the standard scaling factors
func DefaultScaling() ScalingConfig {
	return ScalingConfig{
		FoodExtraAdult:       0.8,
		FoodPerChild:         0.6,
		TransportExtraEarner: 0.9,
		TransportPerChild:    0.10,
		CivicExtraAdult:      0.5,
		CivicPerChild:        0.3,
		OtherExtraAdult:      0.75,
		OtherPerChild:        0.5,
		InternetExtraAdult:   0.40,
	}
}

// NewScaler creates a scaler from configured factors
func NewScaler(cfg ScalingConfig) Scaler {
	return Scaler{cfg: cfg}
}

func extra(n int) float64 {
	return float64(max(n-1, 0))
}

// floor keeps a low-percentile draw from producing a negative cost
func floor(base float64) float64 {
	return math.Max(base, 0)
}

// Food: first adult in full, each further adult and each child at a fraction
func (s Scaler) Food(base float64, adults, children int) float64 {
	return floor(base) * (1 + s.cfg.FoodExtraAdult*extra(adults) + s.cfg.FoodPerChild*float64(children))
}

// Transport: a second earner means a second vehicle at a discount; children add mileage
func (s Scaler) Transport(base float64, earners, children int) float64 {
	vehicles := 1 + s.cfg.TransportExtraEarner*extra(earners)
	mileage := 1 + s.cfg.TransportPerChild*float64(children)
	return floor(base) * vehicles * mileage
}

// Civic covers dues, club fees, worship and youth activities
func (s Scaler) Civic(base float64, adults, children int) float64 {
	return floor(base) * (1 + s.cfg.CivicExtraAdult*extra(adults) + s.cfg.CivicPerChild*float64(children))
}

// Other covers clothing, personal care and furnishings
func (s Scaler) Other(base float64, adults, children int) float64 {
	return floor(base) * (1 + s.cfg.OtherExtraAdult*extra(adults) + s.cfg.OtherPerChild*float64(children))
}

// Internet: children share the household plan
func (s Scaler) Internet(base float64, adults int) float64 {
	return floor(base) * (1 + s.cfg.InternetExtraAdult*extra(adults))
}

// Childcare is per child, except that a two-adult, one-earner household
// is assumed to provide its own childcare
func (s Scaler) Childcare(base float64, adults, earners, children int) float64 {
	if adults == 2 && earners == 1 {
		return 0
	}
	return floor(base) * float64(children)
}

package main

import (
	"math"
)

// monotonicSlack absorbs floating point noise when checking that a midpoint's
// net income lies between the bracket endpoints
const monotonicSlack = 1e-6

// GrossUpSolver inverts TaxEngine.NetAfterTax by bisection
type GrossUpSolver struct {
	taxes *TaxEngine
	cfg   SolverConfig
}

// NewGrossUpSolver creates a solver over a tax engine
func NewGrossUpSolver(taxes *TaxEngine, cfg SolverConfig) *GrossUpSolver {
	return &GrossUpSolver{taxes: taxes, cfg: cfg}
}

// GrossFromNet finds the annual gross income that nets targetNet, to within the
// configured tolerance. It returns the gross and the effective rate 1 - net/gross.
func (s *GrossUpSolver) GrossFromNet(targetNet float64, status FilingStatus, children, earners int) (gross, effectiveRate float64, err error) {
	return s.GrossFromNetWithTolerance(targetNet, status, children, earners, s.cfg.GetTolerance())
}

// GrossFromNetWithTolerance is GrossFromNet with an explicit tolerance in dollars.
//
// The search starts from [target, k*target]. The upper bound doubles until it
// nets at least the target; when refundable credits already lift net above
// gross at the target, the lower bound drops to zero instead. Bisection stops
// once |net(mid) - target| < tolerance or the bracket is one float apart, and fails with ErrSolverNonConvergence
// if the iteration cap is reached or net income is seen to fall as gross rises.
func (s *GrossUpSolver) GrossFromNetWithTolerance(targetNet float64, status FilingStatus, children, earners int, tolerance float64) (gross, effectiveRate float64, err error) {
	if math.IsNaN(targetNet) || math.IsInf(targetNet, 0) {
		return 0, 0, &SolverError{Target: targetNet, Reason: "target net income is not finite"}
	}
	if targetNet <= 0 {
		return 0, 0, nil
	}
	if tolerance <= 0 {
		tolerance = s.cfg.GetTolerance()
	}

	net := func(g float64) float64 {
		return s.taxes.NetAfterTax(g, status, children, earners)
	}

	low := targetNet
	high := targetNet * s.cfg.GetInitialUpperMultiple()

	if net(low) >= targetNet {
		// Refundable credits exceed the tax due at this income, so the answer is below the target
		if math.Abs(net(low)-targetNet) < tolerance {
			return low, 0, nil
		}
		high = low
		low = 0
		if net(low) > targetNet {
			return 0, 0, &SolverError{
				Target: targetNet, Lower: low, Upper: high,
				Reason: "target is below the net income of zero gross earnings",
			}
		}
	} else {
		for expansions := 0; net(high) < targetNet; expansions++ {
			if expansions >= s.cfg.GetMaxExpansions() {
				return 0, 0, &SolverError{
					Target: targetNet, Lower: low, Upper: high,
					Reason: "upper bound never reached the target net income",
				}
			}
			low = high
			high *= 2
		}
	}

	netLow, netHigh := net(low), net(high)
	maxIter := s.cfg.GetMaxIterations()

	for i := 1; i <= maxIter; i++ {
		mid := (low + high) / 2
		netMid := net(mid)

		if netMid < netLow-monotonicSlack || netMid > netHigh+monotonicSlack {
			return 0, 0, &SolverError{
				Target: targetNet, Lower: low, Upper: high, Iterations: i,
				Reason: "net income is not monotonic in gross income",
			}
		}

		// At large targets the bracket can shrink to adjacent floats before net gets within tolerance
		if math.Abs(netMid-targetNet) < tolerance || high-low <= ulp(mid) {
			return mid, 1 - targetNet/mid, nil
		}

		if netMid < targetNet {
			low, netLow = mid, netMid
		} else {
			high, netHigh = mid, netMid
		}
	}

	return 0, 0, &SolverError{
		Target: targetNet, Lower: low, Upper: high, Iterations: maxIter,
		Reason: "iteration cap reached before converging",
	}
}

// ulp is the spacing between x and the next float64 away from zero
func ulp(x float64) float64 {
	x = math.Abs(x)
	return math.Nextafter(x, math.Inf(1)) - x
}

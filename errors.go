package main

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below wrap these so callers can match with errors.Is
// and still pull the offending value out with errors.As.
var (
	ErrUnknownArchetype     = errors.New("livingwage: unknown archetype")
	ErrInvalidBedroomCount  = errors.New("livingwage: invalid bedroom count")
	ErrQuantileOutOfRange   = errors.New("livingwage: quantile out of range")
	ErrSolverNonConvergence = errors.New("livingwage: gross-up solver did not converge")
)

// ArchetypeError reports a label that is not in the registry.
type ArchetypeError struct {
	Label string
}

func (e *ArchetypeError) Error() string {
	return fmt.Sprintf("livingwage: unknown archetype %q", e.Label)
}

func (e *ArchetypeError) Unwrap() error { return ErrUnknownArchetype }

// BedroomError reports a housing tier outside the modelled 1-3 bedroom range.
type BedroomError struct {
	Bedrooms int
}

func (e *BedroomError) Error() string {
	return fmt.Sprintf("livingwage: bedroom count %d not modelled (want 1, 2 or 3)", e.Bedrooms)
}

func (e *BedroomError) Unwrap() error { return ErrInvalidBedroomCount }

// QuantileError reports a percentile outside the open interval (0,1).
type QuantileError struct {
	Q float64
}

func (e *QuantileError) Error() string {
	return fmt.Sprintf("livingwage: quantile %g outside (0,1)", e.Q)
}

func (e *QuantileError) Unwrap() error { return ErrQuantileOutOfRange }

// SolverError describes why GrossFromNet gave up.
type SolverError struct {
	Target     float64
	Lower      float64
	Upper      float64
	Iterations int
	Reason     string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("livingwage: gross-up for net %.2f failed after %d iterations in [%.2f, %.2f]: %s",
		e.Target, e.Iterations, e.Lower, e.Upper, e.Reason)
}

func (e *SolverError) Unwrap() error { return ErrSolverNonConvergence }

// validateQuantile rejects q outside (0,1), including NaN.
func validateQuantile(q float64) error {
	if !(q > 0 && q < 1) {
		return &QuantileError{Q: q}
	}
	return nil
}

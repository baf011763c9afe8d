package tsngen

// errors.go defines the error types surfaced by the scenario generation
// pipeline.  Every error carries enough context (stage, family, seed) that
// a failed run can be reproduced from its error report alone.

import (
	"errors"
	"fmt"
	"strings"
)

// An InvalidParameterError reports a malformed or out-of-range generation
// parameter.  It is fatal and is never retried.
type InvalidParameterError struct {
	Param  string // name of the offending parameter
	Value  string // string rendering of the offered value
	Reason string
}

func (ipe *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%s: %s", ipe.Param, ipe.Value, ipe.Reason)
}

// A ConnectivityError reports that a generated topology failed its family's
// structural contract, even after the bounded regeneration retries allowed
// for stochastic families.  Family and Seed identify the failing draw.
type ConnectivityError struct {
	Family   NetworkFamily
	Seed     int64
	Attempts int
	Reason   string
}

func (ce *ConnectivityError) Error() string {
	return fmt.Sprintf("topology family %s (seed %d) failed validation after %d attempt(s): %s",
		ce.Family, ce.Seed, ce.Attempts, ce.Reason)
}

// An UnreachableError reports that no route exists between a stream's source
// and destination.  Connectivity validation guarantees this should not occur,
// so an UnreachableError indicates a bug in an earlier stage.
type UnreachableError struct {
	Stream string
	Src    string
	Dst    string
}

func (ue *UnreachableError) Error() string {
	return fmt.Sprintf("no route for stream %s from %s to %s", ue.Stream, ue.Src, ue.Dst)
}

// ReportErrs collapses a list of errors into a single error whose message is
// the comma-separated report of the non-nil constituents, or nil if all are nil.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}

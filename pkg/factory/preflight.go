// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

package factory

import (
	"context"
	"fmt"
)

// PreflightFunc is a named side-effect thunk that a graph definition may
// carry to run before any ResourceGraphDefinition is created for a Kro
// deploy — e.g. creating a prerequisite cluster object that isn't itself
// part of the graph. Direct deploys run the same thunks before the graph's
// own resources, for consistency, even though there is no RGD for them to
// precede.
type PreflightFunc struct {
	// Name identifies the thunk in logs and in any PreflightError it
	// produces; it has no effect on ordering, which follows slice order.
	Name string

	// Dynamic marks a thunk that reads live cluster state (status fields,
	// existing objects) rather than only the instance spec it was handed.
	// Kro-mode deploys reject any Dynamic thunk up front: the whole point of
	// running pre-RGD is that nothing the graph manages exists on the
	// cluster yet, so a thunk claiming to need cluster state could not
	// possibly resolve against anything real.
	Dynamic bool

	// Run performs the thunk's side effect. spec is the instance spec the
	// surrounding Deploy call was given, read-only by convention.
	Run func(ctx context.Context, spec map[string]interface{}) error
}

// PreflightValidationError is returned by Deploy when a Kro-mode deploy
// carries a Dynamic preflight thunk; no thunk runs in this case.
type PreflightValidationError struct {
	Name string
}

func (e *PreflightValidationError) Error() string {
	return fmt.Sprintf("factory: preflight %q references cluster state, which is not available before the ResourceGraphDefinition exists", e.Name)
}

// PreflightError wraps the error a named thunk returned, identifying which
// one aborted the sequence.
type PreflightError struct {
	Name string
	Err  error
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("factory: preflight %q failed: %v", e.Name, e.Err)
}

func (e *PreflightError) Unwrap() error { return e.Err }

// validatePreflights checks every thunk before any of them runs — a Kro
// deploy with even one Dynamic thunk fails validation as a whole, rather
// than running the thunks ahead of it and failing partway through.
func validatePreflights(strategy Strategy, preflights []PreflightFunc) error {
	if strategy != StrategyKro {
		return nil
	}
	for _, p := range preflights {
		if p.Dynamic {
			return &PreflightValidationError{Name: p.Name}
		}
	}
	return nil
}

// runPreflights executes every thunk in order, aborting at the first
// failure; thunks after the failing one never run.
func runPreflights(ctx context.Context, preflights []PreflightFunc, spec map[string]interface{}) error {
	for _, p := range preflights {
		if err := p.Run(ctx, spec); err != nil {
			return &PreflightError{Name: p.Name, Err: err}
		}
	}
	return nil
}

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

// Package engine implements the direct deployment engine: it takes a set of
// resource templates linked by ${...} references, orders them into
// dependency levels, and applies each level concurrently, waiting for every
// resource in a level to become ready before moving on to the next.
package engine

import (
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/yehudacohen/typekro-go/pkg/poller"
)

// Resource is one node of a resource graph: an unstructured manifest
// template that may reference other resources' fields (or the owning
// instance's schema) through ${...} expressions.
type Resource struct {
	// ID is the resource's name within the graph, e.g. "deployment" or
	// "vpc". Other resources address it in expressions by this ID.
	ID string
	// Template is the resource manifest, including apiVersion/kind/metadata/
	// spec, with ${...} expressions still unresolved.
	Template map[string]interface{}
	// ReadyWhen is an optional list of CEL boolean expressions; if set, a
	// resource is considered ready only once every expression evaluates
	// true, overriding the per-Kind default in the readiness table.
	ReadyWhen []string
	// IncludeWhen is an optional list of CEL boolean expressions evaluated
	// once, before apply; if any evaluates false the resource is skipped
	// entirely for this deploy.
	IncludeWhen []string
}

// Graph is the full set of resources to deploy for one instance.
type Graph struct {
	Resources []Resource
}

// Options configures a single Deploy call.
type Options struct {
	// MaxConcurrency bounds how many resources within one dependency level
	// are applied/polled at once.
	MaxConcurrency int
	// QPS bounds the rate of API calls the engine issues while applying a
	// level; 0 disables rate limiting.
	QPS float64
	// DryRun sends every create/patch to the API server with DryRun=All, so
	// the server validates and defaults each object but persists nothing,
	// and skips the readiness wait.
	DryRun bool
	// WaitForReady controls whether the engine polls a resource's readiness
	// after applying it. Defaults to true; set false to apply-and-move-on,
	// e.g. the Kro orchestrator deploying an instance custom resource whose
	// own readiness is evaluated separately.
	WaitForReady *bool
	Poll         poller.Options
}

// waitForReady reports the effective WaitForReady setting, defaulting to
// true when unset.
func (o Options) waitForReady() bool {
	return o.WaitForReady == nil || *o.WaitForReady
}

// DefaultOptions returns the engine's default concurrency and poll cadence.
func DefaultOptions() Options {
	return Options{
		MaxConcurrency: 10,
		QPS:            20,
		Poll:           poller.DefaultOptions(),
	}
}

// Deployed is the outcome of applying and waiting for one resource.
type Deployed struct {
	ID        string
	GVK       schema.GroupVersionKind
	Namespace string
	Name      string
	Object    *unstructured.Unstructured
	Skipped   bool
	AppliedAt time.Time
}

// Result is the outcome of a full Deploy call.
type Result struct {
	// Resources is keyed by Resource.ID.
	Resources map[string]*Deployed
	// Levels records the dependency levels actually used to order the
	// apply, in the order they were applied.
	Levels [][]string
}

// ProgressEvent is forwarded to a caller-supplied channel as the engine
// works through a deploy, for CLI/log progress reporting.
type ProgressEvent struct {
	Level      int
	ResourceID string
	Phase      string // "resolving", "applying", "waiting", "ready", "skipped"
	Message    string
}

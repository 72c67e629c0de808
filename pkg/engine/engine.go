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

package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"golang.org/x/time/rate"

	"github.com/yehudacohen/typekro-go/pkg/depgraph"
	"github.com/yehudacohen/typekro-go/pkg/poller"
	"github.com/yehudacohen/typekro-go/pkg/readiness"
	"github.com/yehudacohen/typekro-go/pkg/reference"
)

// Engine deploys a Graph directly against a cluster: no ResourceGraphDefinition
// CRD or kro.run instance is involved, the engine itself applies each
// resource in dependency order and waits for readiness.
type Engine struct {
	mapper  *resourceMapper
	log     logr.Logger
	limiter *rate.Limiter
}

// New returns an Engine that applies resources through dyn, resolving
// Kind-to-resource mappings through disc.
func New(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger) *Engine {
	return &Engine{
		mapper: newResourceMapper(disc, dyn),
		log:    log.WithName("engine"),
	}
}

// Deploy resolves, applies, and waits for readiness of every resource in g,
// honoring dependency levels: resources within a level are applied
// concurrently (bounded by opts.MaxConcurrency/opts.QPS), but a level never
// starts until every resource in the previous one is ready.
//
// schemaData is exposed to every resource's expressions under the "schema"
// resource ID (typically an instance's spec, and its status once hydrated).
func (e *Engine) Deploy(ctx context.Context, g Graph, schemaData map[string]interface{}, opts Options, progress chan<- ProgressEvent) (*Result, error) {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultOptions().MaxConcurrency
	}
	if opts.Poll == (poller.Options{}) {
		opts.Poll = poller.DefaultOptions()
	}

	var limiter *rate.Limiter
	if opts.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.QPS), opts.MaxConcurrency)
	}
	e.limiter = limiter

	graph := depgraph.New[string]()
	byID := make(map[string]Resource, len(g.Resources))
	for i, r := range g.Resources {
		if _, exists := byID[r.ID]; exists {
			return nil, &DuplicateResourceError{ResourceID: r.ID}
		}
		byID[r.ID] = r
		if err := graph.AddVertex(r.ID, i); err != nil {
			return nil, err
		}
	}
	for _, r := range g.Resources {
		deps := resourceDependencies(r)
		if len(deps) > 0 {
			if err := graph.AddDependencies(r.ID, deps); err != nil {
				return nil, fmt.Errorf("resource %q: %w", r.ID, err)
			}
		}
	}

	levels, err := graph.Levels()
	if err != nil {
		return nil, err
	}

	mu := sync.Mutex{}
	resolvedData := map[string]map[string]interface{}{reference.SchemaResourceID: schemaData}
	registry := readiness.NewRegistry()
	result := &Result{Resources: make(map[string]*Deployed, len(g.Resources)), Levels: levels}

	for levelIdx, level := range levels {
		e.log.Info("applying dependency level", "level", levelIdx, "resources", level)
		sem := make(chan struct{}, opts.MaxConcurrency)
		var wg sync.WaitGroup
		errs := make([]error, len(level))

		for i, id := range level {
			i, id := i, id
			res := byID[id]

			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				mu.Lock()
				snapshot := snapshotData(resolvedData)
				mu.Unlock()

				deployed, data, err := e.deployOne(ctx, levelIdx, res, snapshot, registry, opts, progress)
				if err != nil {
					errs[i] = &ApplyError{ResourceID: id, Err: err}
					return
				}

				mu.Lock()
				result.Resources[id] = deployed
				if data != nil {
					resolvedData[id] = data
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// deployOne resolves, applies, and waits for readiness of a single resource.
// It returns the data other resources should see under this resource's ID
// (nil if the resource was skipped by includeWhen).
func (e *Engine) deployOne(ctx context.Context, level int, res Resource, data map[string]map[string]interface{}, registry *readiness.Registry, opts Options, progress chan<- ProgressEvent) (*Deployed, map[string]interface{}, error) {
	emit := func(phase, msg string) {
		if progress == nil {
			return
		}
		select {
		case progress <- ProgressEvent{Level: level, ResourceID: res.ID, Phase: phase, Message: msg}:
		default:
		}
	}

	if len(res.IncludeWhen) > 0 {
		include, msg, err := evaluateBoolExprs(res.IncludeWhen, data, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluating includeWhen: %w", err)
		}
		if !include {
			emit("skipped", msg)
			return &Deployed{ID: res.ID, Skipped: true}, nil, nil
		}
	}

	emit("resolving", "")
	source := unstructured.Unstructured{Object: res.Template}
	template := source.DeepCopy().Object
	descriptors := reference.ScanTemplate(template)
	resolver := reference.NewResolver(res.ID, data)
	if _, err := resolver.Resolve(template, descriptors); err != nil {
		return nil, nil, fmt.Errorf("resolving template: %w", err)
	}

	obj := &unstructured.Unstructured{Object: template}

	if len(res.ReadyWhen) > 0 {
		registry.RegisterCustom(res.ID, customReadinessEvaluator(res.ReadyWhen, data))
	}

	if opts.DryRun {
		emit("applying", "dry-run")
		applied, err := e.applyObject(ctx, e.mapper, obj, true)
		if err != nil {
			return nil, nil, err
		}
		emit("ready", "server dry-run applied, no readiness wait")
		return &Deployed{
			ID:        res.ID,
			GVK:       applied.GroupVersionKind(),
			Namespace: applied.GetNamespace(),
			Name:      applied.GetName(),
			Object:    applied,
			AppliedAt: time.Now(),
		}, applied.Object, nil
	}

	emit("applying", "")
	applied, err := e.applyObject(ctx, e.mapper, obj, false)
	if err != nil {
		return nil, nil, err
	}

	if !opts.waitForReady() {
		emit("ready", "applied without waiting for readiness")
		deployed := &Deployed{
			ID:        res.ID,
			GVK:       applied.GroupVersionKind(),
			Namespace: applied.GetNamespace(),
			Name:      applied.GetName(),
			Object:    applied,
			AppliedAt: time.Now(),
		}
		return deployed, applied.Object, nil
	}

	ri, err := e.mapper.resourceFor(applied)
	if err != nil {
		return nil, nil, err
	}

	var latest *unstructured.Unstructured
	emit("waiting", "")
	checkFn := func(ctx context.Context) (bool, string, error) {
		obj, err := ri.Get(ctx, applied.GetName(), metav1.GetOptions{})
		if err != nil {
			return false, "", err
		}
		latest = obj
		verdict, err := registry.Evaluate(res.ID, obj)
		if err != nil {
			return false, "", err
		}
		return verdict.Ready, verdict.Message, nil
	}
	if err := poller.Wait(ctx, res.ID, opts.Poll, nil, checkFn); err != nil {
		return nil, nil, err
	}

	emit("ready", "")
	deployed := &Deployed{
		ID:        res.ID,
		GVK:       applied.GroupVersionKind(),
		Namespace: applied.GetNamespace(),
		Name:      applied.GetName(),
		Object:    latest,
		AppliedAt: time.Now(),
	}
	return deployed, latest.Object, nil
}

// resourceDependencies collects every resource ID referenced by a resource's
// template, includeWhen, and readyWhen expressions combined.
func resourceDependencies(r Resource) []string {
	seen := map[string]struct{}{}
	var deps []string

	add := func(exprs []string) {
		for _, expr := range exprs {
			for _, ref := range reference.ExtractReferences(expr) {
				if ref.ResourceID == reference.SchemaResourceID || ref.ResourceID == selfResourceID {
					continue
				}
				if _, ok := seen[ref.ResourceID]; ok {
					continue
				}
				seen[ref.ResourceID] = struct{}{}
				deps = append(deps, ref.ResourceID)
			}
		}
	}

	for _, d := range reference.ScanTemplate(r.Template) {
		add(d.Expressions)
	}
	add(r.IncludeWhen)
	add(r.ReadyWhen)
	return deps
}

// snapshotData returns a shallow copy of data's top-level map, so a
// concurrently-running goroutine can read it without racing against another
// goroutine's insert of its own resource's entry.
func snapshotData(data map[string]map[string]interface{}) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/yaml"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
	"github.com/yehudacohen/typekro-go/pkg/engine"
	"github.com/yehudacohen/typekro-go/pkg/kro"
	"github.com/yehudacohen/typekro-go/pkg/readiness"
	"github.com/yehudacohen/typekro-go/pkg/rollback"
)

// GraphDefinition is the static, user-authored description of one resource
// graph: its engine-ready resources for the Direct strategy, or the
// ResourceGraphDefinition for the Kro strategy. A Factory is built for one
// GraphDefinition at a time but may deploy it any number of times under
// distinct instance names.
type GraphDefinition struct {
	// Name identifies the graph itself, used as the fallback component of a
	// generated instance name.
	Name string
	// Kind labels the aggregate object a Direct deploy's Handle wraps; for
	// Kro it is unused (the RGD's Spec.Schema.Kind applies instead).
	Kind string
	// Resources is the Direct-strategy resource graph.
	Resources []engine.Resource
	// RGD is the Kro-strategy ResourceGraphDefinition.
	RGD *v1alpha1.ResourceGraphDefinition
	// StaticStatus holds status fields the caller has already evaluated
	// locally (literal or spec-only expressions); dynamic, hydrated fields
	// win on collision with these when both strategies merge status.
	StaticStatus map[string]interface{}
	// Preflights are named side-effect thunks run, in order, before the
	// graph's own resources are deployed. See PreflightFunc.
	Preflights []PreflightFunc
}

// Options configures a Factory.
type Options struct {
	// Namespace is the default namespace used for a deploy whose spec does
	// not itself carry a "namespace" field.
	Namespace string
}

// deployRecord is what a Factory remembers about one deployed instance,
// beyond the Handle itself, so DeleteInstance/Rollback/ToYAML don't need to
// re-derive it from the cluster.
type deployRecord struct {
	// objects is every object this deploy produced, in applied order; used
	// by ToYAML. For Kro this is [rgd, instance]; for Direct it is every
	// resource the engine applied, flattened in dependency-level order.
	objects []*unstructured.Unstructured
	// rollbackTargets is the subset of objects DeleteInstance/Rollback
	// deletes: every Direct resource in reverse dependency order, or just
	// the instance CR for Kro (the RGD is shared infrastructure, not owned
	// by any one instance).
	rollbackTargets []rollback.Resource
}

// Factory implements the C8 contract: it turns a spec into a deployed
// instance through either the Direct engine or the Kro orchestrator, tracks
// the result in a Registry, and can roll any of it back.
type Factory struct {
	strategy  Strategy
	namespace string
	log       logr.Logger

	eng  *engine.Engine
	rb   *rollback.Manager
	orch *kro.Orchestrator

	mapper   *resourceMapper
	registry *Registry

	mu      sync.Mutex
	records map[string]*deployRecord
}

// NewDirect returns a Factory that deploys graphs by applying their
// resources directly against the cluster, with no ResourceGraphDefinition
// or Kro controller involved.
func NewDirect(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger, opts Options) *Factory {
	return &Factory{
		strategy:  StrategyDirect,
		namespace: opts.Namespace,
		log:       log.WithName("factory"),
		eng:       engine.New(dyn, disc, log),
		rb:        rollback.New(dyn, disc, log),
		mapper:    newResourceMapper(disc, dyn),
		registry:  NewRegistry(),
		records:   make(map[string]*deployRecord),
	}
}

// NewKro returns a Factory that deploys graphs through the kro.run control
// plane: a ResourceGraphDefinition first, then the instance it describes.
func NewKro(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger, opts Options, kroOpts ...kro.Option) *Factory {
	return &Factory{
		strategy:  StrategyKro,
		namespace: opts.Namespace,
		log:       log.WithName("factory"),
		rb:        rollback.New(dyn, disc, log),
		orch:      kro.New(dyn, disc, log, kroOpts...),
		mapper:    newResourceMapper(disc, dyn),
		registry:  NewRegistry(),
		records:   make(map[string]*deployRecord),
	}
}

// Deploy validates the derived instance name, builds the resource graph
// instance, and hands it to whichever strategy this Factory was built for.
// now is a caller-supplied monotonic timestamp (milliseconds) used only when
// spec carries none of the recognized name fields.
func (f *Factory) Deploy(ctx context.Context, def GraphDefinition, spec map[string]interface{}, now int64) (*Handle, error) {
	name := instanceName(def.Name, spec, now)
	if _, exists := f.registry.get(name); exists {
		return nil, &DuplicateInstanceError{Name: name}
	}

	if err := validatePreflights(f.strategy, def.Preflights); err != nil {
		return nil, err
	}

	namespace := f.namespace
	if ns, ok := spec["namespace"].(string); ok && strings.TrimSpace(ns) != "" {
		namespace = ns
	}

	if err := runPreflights(ctx, def.Preflights, spec); err != nil {
		return nil, err
	}

	switch f.strategy {
	case StrategyKro:
		return f.deployKro(ctx, def, namespace, name, spec)
	default:
		return f.deployDirect(ctx, def, namespace, name, spec)
	}
}

func (f *Factory) deployDirect(ctx context.Context, def GraphDefinition, namespace, name string, spec map[string]interface{}) (*Handle, error) {
	specCopy := map[string]interface{}{}
	for k, v := range spec {
		specCopy[k] = v
	}
	specCopy["namespace"] = namespace
	specCopy["name"] = name

	g := engine.Graph{Resources: stampInstanceLabels(def.Resources, def.Name, namespace, name)}
	schemaData := map[string]interface{}{"spec": specCopy}
	result, deployErr := f.eng.Deploy(ctx, g, schemaData, engine.DefaultOptions(), nil)

	handle := &Handle{
		Unstructured: newAggregateObject(def.Kind, namespace, name, specCopy),
		GraphName:    def.Name,
		Strategy:     StrategyDirect,
	}

	record := &deployRecord{}
	if result != nil {
		record.objects, record.rollbackTargets = flattenDirectResult(result)
	}
	f.storeRecord(name, record)

	if deployErr != nil {
		handle.markFailed("ApplyError", deployErr.Error())
		f.registry.put(handle)
		return handle, deployErr
	}

	handle.markReady()
	f.registry.put(handle)
	return handle, nil
}

func (f *Factory) deployKro(ctx context.Context, def GraphDefinition, namespace, name string, spec map[string]interface{}) (*Handle, error) {
	result, deployErr := f.orch.Deploy(ctx, def.RGD, namespace, name, spec, def.StaticStatus)

	if deployErr != nil {
		var failed *kro.InstanceFailedError
		handle := &Handle{
			Unstructured: newAggregateObject(kroKind(def.RGD), namespace, name, spec),
			GraphName:    def.Name,
			Strategy:     StrategyKro,
		}
		if errors.As(deployErr, &failed) {
			handle.markDegraded("KroReconcileFailure", failed.Message)
		} else {
			handle.markFailed("ApplyError", deployErr.Error())
		}
		f.registry.put(handle)
		return handle, deployErr
	}

	instance := result.Instance.DeepCopy()
	if err := unstructured.SetNestedField(instance.Object, result.Status, "status", "hydrated"); err != nil {
		f.log.Error(err, "failed to attach merged status to instance handle", "instance", name)
	}

	handle := &Handle{
		Unstructured: instance,
		GraphName:    def.Name,
		Strategy:     StrategyKro,
	}
	handle.markReady()
	f.registry.put(handle)

	instanceGVK := result.Instance.GroupVersionKind()
	f.storeRecord(name, &deployRecord{
		objects: []*unstructured.Unstructured{result.RGD, result.Instance},
		rollbackTargets: []rollback.Resource{{
			ID:        name,
			GVK:       instanceGVK,
			Namespace: result.Instance.GetNamespace(),
			Name:      result.Instance.GetName(),
		}},
	})
	return handle, nil
}

// GetInstances returns every Handle currently tracked.
func (f *Factory) GetInstances() []*Handle {
	return f.registry.GetInstances()
}

// DeleteInstance rolls back the named instance's Deployment State (Direct)
// or deletes its custom resource (Kro), then removes it from the registry.
func (f *Factory) DeleteInstance(ctx context.Context, name string) (*rollback.Result, error) {
	handle, ok := f.registry.get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	record := f.takeRecord(name)
	var targets []rollback.Resource
	if record != nil {
		targets = record.rollbackTargets
	}

	result, err := f.rb.Rollback(ctx, targets, rollback.Options{})
	if err != nil {
		return result, err
	}

	handle.destroyed = true
	f.registry.delete(name)
	return result, nil
}

// Rollback rolls back every instance this Factory currently tracks through
// the Rollback Manager (C7), in one combined call.
func (f *Factory) Rollback(ctx context.Context) (*rollback.Result, error) {
	var all []rollback.Resource
	names := make([]string, 0)

	f.mu.Lock()
	for name, record := range f.records {
		all = append(all, record.rollbackTargets...)
		names = append(names, name)
	}
	f.mu.Unlock()

	result, err := f.rb.Rollback(ctx, all, rollback.Options{})
	if err != nil {
		return result, err
	}

	for _, name := range names {
		if handle, ok := f.registry.get(name); ok {
			handle.destroyed = true
		}
		f.registry.delete(name)
		f.deleteRecord(name)
	}
	return result, nil
}

// GetStatus re-reads every object DeleteInstance would roll back for name
// and aggregates their readiness: healthy (mapped to StateReady) if every
// object is ready, degraded if any exists but isn't ready yet, failed if any
// is missing or the read itself errored.
func (f *Factory) GetStatus(ctx context.Context, name string) (State, error) {
	handle, ok := f.registry.get(name)
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	if handle.destroyed {
		return StateDestroyed, nil
	}

	record := f.getRecord(name)
	targets := []rollback.Resource{}
	if record != nil {
		targets = record.rollbackTargets
	}
	if len(targets) == 0 {
		return handle.State(), nil
	}

	registry := readiness.NewRegistry()
	allReady := true
	anyMissing := false

	for _, target := range targets {
		ri, err := f.mapper.resourceFor(target.GVK, target.Namespace)
		if err != nil {
			return "", err
		}
		obj, err := ri.Get(ctx, target.Name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				anyMissing = true
				allReady = false
				continue
			}
			return "", err
		}
		verdict, err := registry.Evaluate(target.GVK.Kind, obj)
		if err != nil {
			return "", err
		}
		if !verdict.Ready {
			allReady = false
		}
	}

	switch {
	case anyMissing:
		handle.markFailed("NotFound", "one or more tracked resources are missing")
	case !allReady:
		handle.markDegraded("NotReady", "one or more tracked resources are not yet ready")
	default:
		handle.markReady()
	}
	return handle.State(), nil
}

// ToYAML emits the multi-document YAML for a tracked instance: every
// resource it caused to be applied (Direct), or the RGD and instance custom
// resource (Kro).
func (f *Factory) ToYAML(name string) (string, error) {
	record := f.getRecord(name)
	if record == nil {
		if _, ok := f.registry.get(name); !ok {
			return "", &NotFoundError{Name: name}
		}
		return "", nil
	}

	docs := make([]string, 0, len(record.objects))
	for _, obj := range record.objects {
		if obj == nil {
			continue
		}
		doc, err := yaml.Marshal(obj.Object)
		if err != nil {
			return "", fmt.Errorf("marshaling %s %q to yaml: %w", obj.GetKind(), obj.GetName(), err)
		}
		docs = append(docs, string(doc))
	}
	return strings.Join(docs, "---\n"), nil
}

func (f *Factory) storeRecord(name string, record *deployRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[name] = record
}

func (f *Factory) getRecord(name string) *deployRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[name]
}

func (f *Factory) takeRecord(name string) *deployRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	record := f.records[name]
	delete(f.records, name)
	return record
}

func (f *Factory) deleteRecord(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, name)
}

// flattenDirectResult walks an engine Result's dependency levels in applied
// order to build ToYAML's object list, and in reverse order to build
// DeleteInstance's rollback targets, matching the Rollback Manager's
// reverse-dependency-order requirement.
func flattenDirectResult(result *engine.Result) ([]*unstructured.Unstructured, []rollback.Resource) {
	objects := make([]*unstructured.Unstructured, 0, len(result.Resources))
	for _, level := range result.Levels {
		for _, id := range level {
			deployed, ok := result.Resources[id]
			if !ok || deployed.Skipped || deployed.Object == nil {
				continue
			}
			objects = append(objects, deployed.Object)
		}
	}

	targets := make([]rollback.Resource, 0, len(objects))
	for i := len(objects) - 1; i >= 0; i-- {
		obj := objects[i]
		targets = append(targets, rollback.Resource{
			ID:        obj.GetName(),
			GVK:       obj.GroupVersionKind(),
			Namespace: obj.GetNamespace(),
			Name:      obj.GetName(),
		})
	}
	return objects, targets
}

// newAggregateObject builds the synthetic object a Direct Handle wraps,
// since a Direct deploy has no single instance custom resource the way Kro
// does: it stands in for "the instance" as a whole, carrying the spec the
// caller deployed.
func newAggregateObject(kind, namespace, name string, spec map[string]interface{}) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "typekro.dev/v1alpha1",
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"spec": spec,
	}}
	return obj
}

func kroKind(rgd *v1alpha1.ResourceGraphDefinition) string {
	if rgd == nil || rgd.Spec.Schema == nil {
		return "Instance"
	}
	return rgd.Spec.Schema.Kind
}

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

// Package kro deploys through the kro.run control plane instead of applying
// resources directly: a ResourceGraphDefinition is deployed first, its
// generated CRD is awaited, and only then is the user's instance custom
// resource created, with its own state/condition vocabulary distinct from
// the direct engine's per-Kind readiness table.
package kro

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
	"github.com/yehudacohen/typekro-go/pkg/engine"
	"github.com/yehudacohen/typekro-go/pkg/hydrate"
	"github.com/yehudacohen/typekro-go/pkg/metadata"
	"github.com/yehudacohen/typekro-go/pkg/poller"
	"github.com/yehudacohen/typekro-go/pkg/readiness"
)

const (
	rgdEstablishTimeout  = 60 * time.Second
	crdEstablishTimeout  = 60 * time.Second
	instanceReadyTimeout = 600 * time.Second
)

var crdGVK = schema.GroupVersionKind{Group: "apiextensions.k8s.io", Version: "v1", Kind: "CustomResourceDefinition"}

// DeployResult is the outcome of deploying one instance through kro.run:
// the RGD and instance objects as last observed, plus the merged status
// (statically-declared fields overridden by anything the instance's own
// status actually reports).
type DeployResult struct {
	RGD      *unstructured.Unstructured
	Instance *unstructured.Unstructured
	Status   map[string]interface{}
}

// Orchestrator implements the kro.run deployment strategy: deploying and
// waiting on a ResourceGraphDefinition, its generated CRD, and finally the
// instance it describes.
type Orchestrator struct {
	eng    *engine.Engine
	mapper *resourceMapper
	hyd    *hydrate.Hydrator
	log    logr.Logger

	rgdTimeout      time.Duration
	crdTimeout      time.Duration
	instanceTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRGDTimeout overrides the 60s default allowed for the ResourceGraphDefinition
// controller to report state Active.
func WithRGDTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.rgdTimeout = d }
}

// WithCRDTimeout overrides the 60s default allowed for kro to generate and
// establish the instance CRD.
func WithCRDTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.crdTimeout = d }
}

// WithInstanceTimeout overrides the 600s default allowed for the instance to
// satisfy kro's own readiness rule.
func WithInstanceTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.instanceTimeout = d }
}

// New returns an Orchestrator that deploys through dyn, resolving
// Kind-to-resource mappings through disc.
func New(dyn dynamic.Interface, disc discovery.DiscoveryInterface, log logr.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		eng:             engine.New(dyn, disc, log),
		mapper:          newResourceMapper(disc, dyn),
		hyd:             hydrate.New(dyn, disc, log),
		log:             log.WithName("kro"),
		rgdTimeout:      rgdEstablishTimeout,
		crdTimeout:      crdEstablishTimeout,
		instanceTimeout: instanceReadyTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Deploy runs the five kro.run deployment steps: deploy the RGD, await its
// generated CRD, create the instance, wait for kro's own instance-readiness
// rule, and finally merge the instance's hydrated dynamic status onto
// staticStatus (dynamic fields win on collision).
func (o *Orchestrator) Deploy(ctx context.Context, rgd *v1alpha1.ResourceGraphDefinition, instanceNamespace, instanceName string, instanceSpec map[string]interface{}, staticStatus map[string]interface{}) (*DeployResult, error) {
	deployedRGD, err := o.deployRGD(ctx, rgd)
	if err != nil {
		return nil, fmt.Errorf("deploying resource graph definition %q: %w", rgd.Name, err)
	}

	kind := rgd.Spec.Schema.Kind
	if err := o.awaitCRD(ctx, kind); err != nil {
		return nil, fmt.Errorf("waiting for CRD %s to establish: %w", crdName(kind), err)
	}

	group := rgd.Spec.Schema.Group
	if group == "" {
		group = v1alpha1.KRODomainName
	}
	apiVersion := fmt.Sprintf("%s/%s", group, rgd.Spec.Schema.APIVersion)

	instance, err := o.deployInstance(ctx, apiVersion, kind, instanceNamespace, instanceName, rgd.Name, instanceSpec)
	if err != nil {
		return nil, fmt.Errorf("deploying instance %q: %w", instanceName, err)
	}

	declaresCustomFields := statusSchemaDeclaresCustomFields(rgd)
	final, err := o.awaitInstanceReady(ctx, instance, declaresCustomFields)
	if err != nil {
		return nil, fmt.Errorf("waiting for instance %q to become ready: %w", instanceName, err)
	}

	dynamicFields := map[string]interface{}{}
	if _, err := o.hyd.Hydrate(ctx, dynamicFields, final.GroupVersionKind(), final.GetNamespace(), final.GetName(), final); err != nil {
		return nil, fmt.Errorf("hydrating instance %q status: %w", instanceName, err)
	}

	return &DeployResult{
		RGD:      deployedRGD,
		Instance: final,
		Status:   mergeStatus(staticStatus, dynamicFields),
	}, nil
}

// deployRGD applies the ResourceGraphDefinition directly (through the same
// engine a Direct-strategy deploy uses) and waits for its controller to
// report state == Active.
func (o *Orchestrator) deployRGD(ctx context.Context, rgd *v1alpha1.ResourceGraphDefinition) (*unstructured.Unstructured, error) {
	obj, err := toUnstructured(rgd)
	if err != nil {
		return nil, err
	}

	g := engine.Graph{Resources: []engine.Resource{{
		ID:        "rgd",
		Template:  obj.Object,
		ReadyWhen: []string{"${self.status.state == 'Active'}"},
	}}}

	opts := engine.DefaultOptions()
	opts.Poll.Timeout = o.rgdTimeout

	result, err := o.eng.Deploy(ctx, g, nil, opts, nil)
	if err != nil {
		return nil, err
	}
	return result.Resources["rgd"].Object, nil
}

// awaitCRD polls the CRD kro.run generates for the RGD's schema kind until
// it reports Established, using the same crdReady predicate the direct
// engine applies to any CustomResourceDefinition it deploys itself.
func (o *Orchestrator) awaitCRD(ctx context.Context, kind string) error {
	name := crdName(kind)
	ri, err := o.mapper.resourceFor(crdGVK, "")
	if err != nil {
		return err
	}

	registry := readiness.NewRegistry()
	checkFn := func(ctx context.Context) (bool, string, error) {
		obj, err := ri.Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, "", err
		}
		verdict, err := registry.Evaluate("crd", obj)
		if err != nil {
			return false, "", err
		}
		return verdict.Ready, verdict.Message, nil
	}

	opts := poller.DefaultOptions()
	opts.Timeout = o.crdTimeout
	return poller.Wait(ctx, name, opts, nil, checkFn)
}

// deployInstance applies the user's instance custom resource without
// waiting for it: kro's own readiness rule (state/InstanceSynced/custom
// status fields), not the direct engine's per-Kind table, decides when the
// instance is ready.
func (o *Orchestrator) deployInstance(ctx context.Context, apiVersion, kind, namespace, name, rgdName string, spec map[string]interface{}) (*unstructured.Unstructured, error) {
	template := map[string]interface{}{
		"apiVersion": apiVersion,
		"kind":       kind,
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
		"spec": spec,
	}

	instanceObj := &unstructured.Unstructured{Object: template}
	labeler := metadata.NewResourceGraphDefinitionLabeler(&metav1.ObjectMeta{Name: rgdName})
	labeler[metadata.OwnedLabel] = "true"
	labeler.ApplyLabels(instanceObj)
	if err := metadata.SetInstanceFinalizerUnstructured(instanceObj); err != nil {
		return nil, fmt.Errorf("setting instance finalizer: %w", err)
	}

	g := engine.Graph{Resources: []engine.Resource{{ID: "instance", Template: template}}}
	opts := engine.DefaultOptions()
	noWait := false
	opts.WaitForReady = &noWait

	result, err := o.eng.Deploy(ctx, g, nil, opts, nil)
	if err != nil {
		return nil, err
	}
	return result.Resources["instance"].Object, nil
}

// awaitInstanceReady polls the instance with kro's own combined rule. A
// FAILED state is terminal: it stops poller.Wait immediately by reporting
// done, rather than surfacing as a CheckFunc error that poller.Wait would
// otherwise retry until its timeout elapsed.
func (o *Orchestrator) awaitInstanceReady(ctx context.Context, instance *unstructured.Unstructured, declaresCustomFields bool) (*unstructured.Unstructured, error) {
	gvk := instance.GroupVersionKind()
	ri, err := o.mapper.resourceFor(gvk, instance.GetNamespace())
	if err != nil {
		return nil, err
	}

	var latest *unstructured.Unstructured
	var failed *InstanceFailedError

	checkFn := func(ctx context.Context) (bool, string, error) {
		obj, err := ri.Get(ctx, instance.GetName(), metav1.GetOptions{})
		if err != nil {
			return false, "", err
		}
		latest = obj

		state, _, _ := unstructured.NestedString(obj.Object, "status", "state")
		if state == "FAILED" {
			failed = &InstanceFailedError{Name: instance.GetName(), Message: firstFailingConditionMessage(obj)}
			return true, "", nil
		}

		verdict := evaluateInstance(obj, declaresCustomFields)
		return verdict.ready, verdict.message, nil
	}

	opts := poller.DefaultOptions()
	opts.Timeout = o.instanceTimeout
	if err := poller.Wait(ctx, instance.GetName(), opts, nil, checkFn); err != nil {
		return nil, err
	}
	if failed != nil {
		return nil, failed
	}
	return latest, nil
}

func toUnstructured(rgd *v1alpha1.ResourceGraphDefinition) (*unstructured.Unstructured, error) {
	obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(rgd)
	if err != nil {
		return nil, fmt.Errorf("converting resource graph definition to unstructured: %w", err)
	}
	out := &unstructured.Unstructured{Object: obj}
	out.SetAPIVersion(v1alpha1.GroupVersion.String())
	out.SetKind("ResourceGraphDefinition")
	return out, nil
}

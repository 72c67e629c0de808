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

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"

	"github.com/yehudacohen/typekro-go/pkg/readiness"
)

// addStatusCommand wires `typekro status MANIFEST_FILE`, re-evaluating each
// resource's own readiness rule against its live state on the cluster — the
// same per-Kind table the engine itself polls with, rather than anything
// typekro remembers from a previous invocation.
func addStatusCommand(root *cobra.Command, flags *globalFlags) {
	cmd := &cobra.Command{
		Use:   "status [MANIFEST_FILE]",
		Short: "Report the live readiness of every resource listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objs, err := readManifests(args[0])
			if err != nil {
				return err
			}

			dyn, disc, err := clients(flags.kubeconfig)
			if err != nil {
				return fmt.Errorf("building cluster clients: %w", err)
			}

			mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(disc))
			registry := readiness.NewRegistry()

			allReady := true
			for _, obj := range objs {
				namespace := obj.GetNamespace()
				if namespace == "" {
					namespace = flags.namespace
				}
				gvk := obj.GroupVersionKind()

				mapping, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", gvk, err)
				}

				var ri dynamic.ResourceInterface = dyn.Resource(mapping.Resource)
				if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
					ri = dyn.Resource(mapping.Resource).Namespace(namespace)
				}

				live, err := ri.Get(cmd.Context(), obj.GetName(), metav1.GetOptions{})
				if err != nil {
					if apierrors.IsNotFound(err) {
						fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: not found\n", gvk.Kind, obj.GetName())
						allReady = false
						continue
					}
					return fmt.Errorf("getting %s %q: %w", gvk.Kind, obj.GetName(), err)
				}

				verdict, err := registry.Evaluate(gvk.Kind, live)
				if err != nil {
					return fmt.Errorf("evaluating readiness of %s %q: %w", gvk.Kind, obj.GetName(), err)
				}
				if !verdict.Ready {
					allReady = false
				}
				printVerdict(cmd, gvk.Kind, obj.GetName(), verdict)
			}

			if !allReady {
				fmt.Fprintln(cmd.OutOrStdout(), "overall: not ready")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "overall: ready")
			}
			return nil
		},
	}
	root.AddCommand(cmd)
}

func printVerdict(cmd *cobra.Command, kind, name string, verdict readiness.Verdict) {
	status := "NotReady"
	if verdict.Ready {
		status = "Ready"
	}
	if verdict.Message != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s (%s)\n", kind, name, status, verdict.Message)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s\n", kind, name, status)
}

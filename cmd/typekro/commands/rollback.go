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

	"github.com/yehudacohen/typekro-go/pkg/rollback"
)

// addRollbackCommand wires `typekro rollback MANIFEST_FILE`. typekro keeps
// no persisted record of what a previous invocation deployed (see the
// config contract), so rollback operates on a manifest of concrete,
// already-resolved objects — typically the `-o yaml` output of an earlier
// `deploy` call — the same way `kubectl delete -f` does.
func addRollbackCommand(root *cobra.Command, flags *globalFlags) {
	cmd := &cobra.Command{
		Use:   "rollback [MANIFEST_FILE]",
		Short: "Delete every resource listed in a manifest, in reverse order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objs, err := readManifests(args[0])
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				return fmt.Errorf("%s: no resources found", args[0])
			}

			dyn, disc, err := clients(flags.kubeconfig)
			if err != nil {
				return fmt.Errorf("building cluster clients: %w", err)
			}

			targets := make([]rollback.Resource, 0, len(objs))
			for i := len(objs) - 1; i >= 0; i-- {
				obj := objs[i]
				namespace := obj.GetNamespace()
				if namespace == "" {
					namespace = flags.namespace
				}
				targets = append(targets, rollback.Resource{
					ID:        obj.GetName(),
					GVK:       obj.GroupVersionKind(),
					Namespace: namespace,
					Name:      obj.GetName(),
				})
			}

			mgr := rollback.New(dyn, disc, newLogger(flags.verbose))
			result, err := mgr.Rollback(cmd.Context(), targets, rollback.Options{})
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "rollback %s: %d resource(s) rolled back\n", result.Status, len(result.RolledBack))
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", e.ResourceID, e.Err)
				}
			}
			return err
		},
	}
	root.AddCommand(cmd)
}

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

	"github.com/yehudacohen/typekro-go/api/v1alpha1"
)

func addValidateCommand(root *cobra.Command) {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a ResourceGraphDefinition",
	}

	validateRGDCmd := &cobra.Command{
		Use:   "rgd [FILE]",
		Short: "Validate a ResourceGraphDefinition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rgd, err := readRGD(args[0])
			if err != nil {
				return err
			}
			if err := validateRGD(rgd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: kind %s, %d resource(s)\n", args[0], rgd.Spec.Schema.Kind, len(rgd.Spec.Resources))
			return nil
		},
	}

	validateCmd.AddCommand(validateRGDCmd)
	root.AddCommand(validateCmd)
}

// validateRGD checks the structural invariants an applied
// ResourceGraphDefinition must hold before it's worth sending to a cluster:
// a schema naming the instance kind/apiVersion, at least one resource, and
// no two resources sharing an id (the graph builder would otherwise fail
// much later with a less useful error).
func validateRGD(rgd *v1alpha1.ResourceGraphDefinition) error {
	if rgd.Spec.Schema == nil {
		return fmt.Errorf("spec.schema is required")
	}
	if rgd.Spec.Schema.Kind == "" {
		return fmt.Errorf("spec.schema.kind is required")
	}
	if rgd.Spec.Schema.APIVersion == "" {
		return fmt.Errorf("spec.schema.apiVersion is required")
	}
	if len(rgd.Spec.Resources) == 0 {
		return fmt.Errorf("spec.resources must declare at least one resource")
	}

	seen := make(map[string]bool, len(rgd.Spec.Resources))
	for _, r := range rgd.Spec.Resources {
		if r.ID == "" {
			return fmt.Errorf("every resource must declare an id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate resource id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

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
	"time"

	"github.com/spf13/cobra"

	"github.com/yehudacohen/typekro-go/pkg/factory"
)

func addDeployCommand(root *cobra.Command, flags *globalFlags) {
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a resource graph, either directly or through kro.run",
	}

	var showYAML bool

	directCmd := &cobra.Command{
		Use:   "direct [RESOURCES_FILE] [SPEC_FILE]",
		Short: "Apply a graph's resources directly, without involving kro.run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gf, err := readGraphFile(args[0])
			if err != nil {
				return err
			}
			spec, err := readSpec(args[1])
			if err != nil {
				return err
			}
			resources, err := toEngineResources(gf.Resources)
			if err != nil {
				return err
			}

			dyn, disc, err := clients(flags.kubeconfig)
			if err != nil {
				return fmt.Errorf("building cluster clients: %w", err)
			}

			f := factory.NewDirect(dyn, disc, newLogger(flags.verbose), factory.Options{Namespace: flags.namespace})
			handle, deployErr := f.Deploy(cmd.Context(), factory.GraphDefinition{Name: gf.Name, Kind: gf.Kind, Resources: resources}, spec, time.Now().UnixMilli())
			return reportDeploy(cmd, f, handle, deployErr, showYAML)
		},
	}

	kroCmd := &cobra.Command{
		Use:   "kro [RGD_FILE] [SPEC_FILE]",
		Short: "Deploy a ResourceGraphDefinition and instance through kro.run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rgd, err := readRGD(args[0])
			if err != nil {
				return err
			}
			spec, err := readSpec(args[1])
			if err != nil {
				return err
			}
			if rgd.Spec.Schema == nil {
				return fmt.Errorf("%s: spec.schema is required", args[0])
			}

			dyn, disc, err := clients(flags.kubeconfig)
			if err != nil {
				return fmt.Errorf("building cluster clients: %w", err)
			}

			f := factory.NewKro(dyn, disc, newLogger(flags.verbose), factory.Options{Namespace: flags.namespace})
			def := factory.GraphDefinition{Name: rgd.Name, Kind: rgd.Spec.Schema.Kind, RGD: rgd}
			handle, deployErr := f.Deploy(cmd.Context(), def, spec, time.Now().UnixMilli())
			return reportDeploy(cmd, f, handle, deployErr, showYAML)
		},
	}

	for _, sub := range []*cobra.Command{directCmd, kroCmd} {
		sub.Flags().BoolVarP(&showYAML, "output-yaml", "o", false, "Print the applied resources as YAML on success")
	}

	deployCmd.AddCommand(directCmd, kroCmd)
	root.AddCommand(deployCmd)
}

func reportDeploy(cmd *cobra.Command, f *factory.Factory, handle *factory.Handle, deployErr error, showYAML bool) error {
	if handle == nil {
		return deployErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "instance %q: %s\n", handle.Name(), handle.State())
	if deployErr != nil {
		return deployErr
	}

	if showYAML {
		doc, err := f.ToYAML(handle.Name())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc)
	}
	return nil
}

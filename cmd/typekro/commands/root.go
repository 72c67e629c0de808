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

// Package commands implements the typekro CLI's cobra command tree: deploy,
// rollback, status, and validate.
package commands

import (
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	kroclient "github.com/yehudacohen/typekro-go/pkg/client"
)

// globalFlags holds the flags every subcommand shares to reach a cluster.
type globalFlags struct {
	kubeconfig string
	namespace  string
	verbose    bool
}

// NewRootCommand builds the typekro CLI's command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	var kubeConfigPath string
	if home := homedir.HomeDir(); home != "" {
		kubeConfigPath = filepath.Join(home, ".kube", "config")
	}

	cmd := &cobra.Command{
		Use:   "typekro",
		Short: "typekro deploys resource graphs directly or through kro.run",
		Long: `typekro applies a resource graph against a Kubernetes cluster, either
by applying its resources directly or by deploying a ResourceGraphDefinition
and instance through the kro.run control plane.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.kubeconfig, "kubeconfig", kubeConfigPath, "Path to kubeconfig file")
	cmd.PersistentFlags().StringVarP(&flags.namespace, "namespace", "n", "default", "Namespace for the deployed instance")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging")

	addDeployCommand(cmd, flags)
	addRollbackCommand(cmd, flags)
	addStatusCommand(cmd, flags)
	addValidateCommand(cmd)

	return cmd
}

func newLogger(verbose bool) logr.Logger {
	var zapLog *zap.Logger
	var err error
	if verbose {
		zapLog, err = zap.NewDevelopment()
	} else {
		zapLog, err = zap.NewProduction()
	}
	if err != nil {
		zapLog = zap.NewNop()
	}
	return zapr.NewLogger(zapLog)
}

// clients resolves the dynamic and discovery clients every subcommand needs,
// from the kubeconfig path the user supplied (or its default location).
func clients(kubeconfig string) (dynamic.Interface, discovery.DiscoveryInterface, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, nil, err
	}

	set, err := kroclient.NewSet(kroclient.Config{RestConfig: restConfig, QPS: 50, Burst: 100})
	if err != nil {
		return nil, nil, err
	}
	return set.Dynamic(), set.Kubernetes().Discovery(), nil
}

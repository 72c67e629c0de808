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
	"fmt"
	"regexp"
	"strings"
)

// nameFields is the precedence order in which a deploy spec's top-level
// fields are consulted for an instance name before falling back to a
// generated one.
var nameFields = []string{"name", "appName", "serviceName", "resourceName"}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	collapseDashes  = regexp.MustCompile(`-{2,}`)
	leadingNonAlpha = regexp.MustCompile(`^[^a-z]+`)
	trailingDashes  = regexp.MustCompile(`-+$`)
)

const maxNameLength = 253

// instanceName derives a deployed instance's name from spec, following the
// same field precedence a caller's deploy options would: spec.name,
// spec.appName, spec.serviceName, spec.resourceName, or else a
// graph-derived default. now is a caller-supplied monotonic timestamp
// (milliseconds), since this package never reads the wall clock itself.
func instanceName(graphName string, spec map[string]interface{}, now int64) string {
	for _, field := range nameFields {
		if v, ok := spec[field]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return toKebabCase(s)
			}
		}
	}
	return toKebabCase(fmt.Sprintf("%s-%d", graphName, now))
}

// toKebabCase lowercases s and rewrites it into a valid Kubernetes resource
// name: [a-z][a-z0-9-]*[a-z0-9], truncated to 253 characters.
func toKebabCase(s string) string {
	dashed := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	dashed = collapseDashes.ReplaceAllString(dashed, "-")
	dashed = leadingNonAlpha.ReplaceAllString(dashed, "")
	dashed = trailingDashes.ReplaceAllString(dashed, "")

	if len(dashed) > maxNameLength {
		dashed = trailingDashes.ReplaceAllString(dashed[:maxNameLength], "")
	}
	if dashed == "" {
		dashed = "instance"
	}
	return dashed
}

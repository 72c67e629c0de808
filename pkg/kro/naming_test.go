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

package kro

import "testing"

func TestPluralize(t *testing.T) {
	cases := map[string]string{
		"WebApp":   "webapps",
		"Proxy":    "proxies",
		"Database": "databases",
		"Bus":      "buses",
	}
	for kind, want := range cases {
		if got := pluralize(kind); got != want {
			t.Errorf("pluralize(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestCRDName(t *testing.T) {
	if got, want := crdName("WebApp"), "webapps.kro.run"; got != want {
		t.Errorf("crdName(WebApp) = %q, want %q", got, want)
	}
}

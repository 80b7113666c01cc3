// Copyright (c) 2026, GroundCtl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"strings"
)

const (
	// DefaultAPIVersion is served when a client does not pin one.
	DefaultAPIVersion = "v1"

	// headerAPIVersion reports the negotiated version on every response.
	headerAPIVersion = "X-API-Version"

	// acceptVendorPrefix is the vendor MIME prefix a client uses to pin
	// a version, as in "application/vnd.groundctl.mavmon.v1+json".
	acceptVendorPrefix = "application/vnd.groundctl.mavmon."
)

// supportedAPIVersions enumerates the versions this daemon can serve.
var supportedAPIVersions = map[string]bool{
	"v1": true,
}

// negotiateAPIVersion resolves the API version for a request from its
// Accept header. Unknown or malformed version requests fall back to the
// default rather than failing.
func negotiateAPIVersion(r *http.Request) string {
	accept := r.Header.Get("Accept")

	idx := strings.Index(accept, acceptVendorPrefix)
	if idx < 0 {
		return DefaultAPIVersion
	}

	// The version runs from the end of the prefix to the MIME suffix,
	// parameter list, or next alternative, whichever comes first.
	version := accept[idx+len(acceptVendorPrefix):]
	if cut := strings.IndexAny(version, "+;, "); cut >= 0 {
		version = version[:cut]
	}

	if supportedAPIVersions[version] {
		return version
	}
	return DefaultAPIVersion
}

// SetAPIVersionHeader reports the negotiated API version to the client.
func SetAPIVersionHeader(w http.ResponseWriter, version string) {
	w.Header().Set(headerAPIVersion, version)
}

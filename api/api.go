// Package api bundles the backend contract the gateway validates against.
package api

import _ "embed"

// BackendSpec is the OpenAPI 3 document of the WelfareWatch REST backend.
// Paths are relative to the configured backend base URL.
//
//go:embed backend.yaml
var BackendSpec []byte

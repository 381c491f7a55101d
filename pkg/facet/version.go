// Package facet carries module-level metadata shared by the CLI and the
// HTTP service.
package facet

// Version is the Facet release version.
const Version = "0.1.0"

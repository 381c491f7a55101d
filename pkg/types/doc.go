// Package types defines the Store and Collection interfaces, the schema
// model, query directives, and standard errors for the Facet record store.
package types

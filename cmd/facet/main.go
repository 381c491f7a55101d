// Command facet is the CLI entry point for the Facet record store.
package main

import "github.com/mesh-intelligence/facet/internal/cli"

func main() {
	cli.Execute()
}

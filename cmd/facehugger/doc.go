// Package main hosts the facehugger CLI entrypoint and command graph.
//
// The root command reads a facehugger.yaml manifest and downloads every model
// it lists through the hf client, verifying checksums and printing how the
// hub cache changed. Subcommands scaffold configuration, report environment
// readiness and show the run journal.
//
// Keep this package lean: behaviour lives in the internal packages and is
// only wired together here.
package main

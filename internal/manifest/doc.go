// Package manifest loads and validates facehugger.yaml documents.
//
// A manifest lists hub repositories to fetch:
//
//	models:
//	  - repo: owner/model-repo
//	    ref: main          # optional, defaults to "main"
//	    include: "*.gguf"  # optional glob, or a list of globs
//	    exclude: "*.ckpt"  # optional glob, or a list of globs
//
// Load distinguishes three failure classes so the CLI can report them
// precisely: a missing file (ErrNotFound), malformed YAML (*ParseError), and a
// well-formed document that does not satisfy the schema (*ValidationError).
package manifest

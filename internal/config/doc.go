// Package config loads, normalizes, and validates facehugger configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN and HF_HOME. The Config type centralizes the knobs the CLI needs to
// locate the hf binary, the run journal, and log output.
//
// The manifest itself is not configuration; see package manifest.
package config

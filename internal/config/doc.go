// Package config loads and watches seam's configuration.
//
// Configuration comes from three layers, lowest priority first: built-in
// defaults, an optional TOML file, and SEAM_* environment variables.
// Load resolves all three into a validated Config. A Watcher can follow
// the file afterwards and deliver freshly loaded snapshots on change, so
// a running viewer picks up edits to its config without restarting.
package config

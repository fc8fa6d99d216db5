// Package file provides a TOML file-backed implementation of the config
// store port. Configuration lives at ~/.docsage/config.toml and nested
// tables are exposed as dotted keys ("retrieval.top_k").
package file

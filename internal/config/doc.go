// Package config loads, validates, and normalizes the dcmsort TOML
// configuration, including the PACS node aliases consumed by the send path.
package config

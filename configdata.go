package mainstay

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded
// at build time. The dispatcher seeds it into the data directory on first
// run; regenerate with go generate after changing the config schema.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte

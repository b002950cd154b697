package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Build scripts may overwrite hostenum.yaml with site defaults (archive
// directory, upload server) before compiling.
//
//go:embed hostenum.yaml
var embeddedConfig []byte

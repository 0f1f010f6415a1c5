package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 20
	DefaultExportLimit = 0 // everything
	DefaultSearchLimit = 5
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}

package config

// Preset is a named set of patterns for a well-known document layout.
type Preset struct {
	Description string
	StartAfter  string
	StopAfter   string
	Req         string
	Ref         string
	Syntax      string
}

// Presets are the built-in pattern sets, selected with documents[].preset.
var Presets = map[string]Preset{
	// OpenSpec capability specs: "### Requirement: <name>" headings
	"openspec": {
		Description: "OpenSpec requirement headings",
		Req:         `^###\s+Requirement:\s+(.+?)\s*$`,
		Syntax:      "re2",
	},
	// Bracketed tags such as [REQ-12], referenced with "satisfies [REQ-12]"
	"bracketed": {
		Description: "bracketed requirement tags",
		Req:         `^\s*\[([A-Z][A-Z0-9]*-[0-9]+)\]`,
		Ref:         `(?i:satisfies|covers|implements)\s*\[([A-Z][A-Z0-9]*-[0-9]+)\]`,
		Syntax:      "re2",
	},
}

package output

import "strings"

// OutputFormat specifies how manifests are emitted.
type OutputFormat string

const (
	// FormatYAML prints manifests to stdout as YAML.
	FormatYAML OutputFormat = "yaml"

	// FormatJSON prints manifests to stdout as JSON.
	FormatJSON OutputFormat = "json"

	// FormatDir writes manifests below the dist directory.
	FormatDir OutputFormat = "dir"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatYAML, FormatJSON, FormatDir:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
// Returns FormatDir if the string is empty or invalid.
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "yaml", "yml":
		return FormatYAML
	case "json":
		return FormatJSON
	default:
		return FormatDir
	}
}

// ValidFormats returns the accepted output format strings.
func ValidFormats() []string {
	return []string{"dir", "json", "yaml"}
}

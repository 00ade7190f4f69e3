package errors

import "sort"

// Template defines a registered error code.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// Config (E100-E199)

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No statebox.json was found in the directory or any parent. Run `statebox init` to create one.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
		Detail:   "The config file could not be parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config field has a value outside its allowed range or set.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Config file could not be written",
		Detail:   "Writing the config file failed. Check that the directory exists and is writable.",
	},
	"E104": {
		Category: CategoryCLI,
		Message:  "Config file already exists",
		Detail:   "Refusing to overwrite an existing statebox.json. Pass --force to replace it.",
	},

	// Runtime (E200-E299)

	"E200": {
		Category: CategoryRuntime,
		Message:  "Initial state value is not valid JSON",
		Detail:   "A value in the states section could not be decoded.",
	},
	"E201": {
		Category: CategoryRuntime,
		Message:  "State container is poisoned",
		Detail:   "A panic occurred while the container's value was locked. Its value can no longer be trusted and further writes fail.",
	},
	"E202": {
		Category: CategoryRuntime,
		Message:  "Inspector server failed",
		Detail:   "The HTTP inspector could not start or stopped unexpectedly. Check that the address is free.",
	},
	"E203": {
		Category: CategoryRuntime,
		Message:  "Duplicate state name",
		Detail:   "Every state container must have a unique name.",
	},

	// Snapshot (E300-E399)

	"E300": {
		Category: CategorySnapshot,
		Message:  "Snapshot backend unavailable",
		Detail:   "The snapshot backend could not be configured.",
	},
	"E301": {
		Category: CategorySnapshot,
		Message:  "Snapshot save failed",
		Detail:   "One or more containers could not be written to the snapshot backend.",
	},
	"E302": {
		Category: CategorySnapshot,
		Message:  "Snapshot restore failed",
		Detail:   "One or more snapshots could not be loaded into their containers.",
	},
	"E303": {
		Category: CategorySnapshot,
		Message:  "Unsupported snapshot version",
		Detail:   "The snapshot was written by a newer or incompatible format version.",
	},
}

// Codes returns all registered codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces a template. It is not safe to call concurrently
// with New.
func Register(code string, template Template) {
	registry[code] = template
}

package telemetry

import (
	"fmt"
	"sort"
	"strings"
)

// formatAttrs renders attributes as sorted Key=value pairs for log lines.
func formatAttrs(attrs map[string]interface{}) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, attrs[k]))
	}
	return strings.Join(parts, " ")
}

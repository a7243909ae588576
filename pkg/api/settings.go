package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSettingValue infers the JSON type of a command-line setting value:
// "true"/"false" in any case become booleans, then integers, then floats,
// and anything else stays a string.
func ParseSettingValue(value string) any {
	switch {
	case strings.EqualFold(value, "true"):
		return true
	case strings.EqualFold(value, "false"):
		return false
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	// NaN and Inf are not representable in JSON.
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}

	return value
}

// ResolvePreset finds a preset by exact id first, then by case-insensitive
// name.
func ResolvePreset(presets []ModelPreset, nameOrID string) (ModelPreset, error) {
	for _, p := range presets {
		if p.ID == nameOrID {
			return p, nil
		}
	}
	for _, p := range presets {
		if strings.EqualFold(p.Name, nameOrID) {
			return p, nil
		}
	}
	return ModelPreset{}, fmt.Errorf("Preset '%s' not found. Use 'speakmcp presets list' to see available presets.", nameOrID) //nolint:staticcheck // user-facing sentence
}

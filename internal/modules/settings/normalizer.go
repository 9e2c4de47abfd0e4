package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/aristath/folio/internal/domain"
)

// The settings key set is small and fixed, so the stored (snake_case) and
// typed (camelCase) forms are an enumerated bijection rather than a runtime
// string transformation. A general regex transform risks silent collisions
// on keys outside this set.
var storedToTyped = map[string]string{
	"currency":         "currency",
	"dark_mode":        "darkMode",
	"pro_mode":         "proMode",
	"refresh_interval": "refreshInterval",
	"default_period":   "defaultPeriod",
}

var typedToStored = invert(storedToTyped)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Defaults are the settings restored by a reset.
var Defaults = map[string]string{
	"currency":         "USD",
	"dark_mode":        "false",
	"pro_mode":         "false",
	"refresh_interval": "60",
	"default_period":   "1Y",
}

// ToTyped converts stored string values into their typed form: "true" and
// "false" become booleans, strings that parse fully as decimal numbers
// become float64, everything else stays a string. Values that were stored
// as JSON text are NOT re-parsed; that asymmetry is a documented limitation,
// and callers who store structured values must re-parse them themselves.
// Stored keys outside the enumerated table are skipped.
func ToTyped(stored map[string]string) map[string]interface{} {
	typed := make(map[string]interface{}, len(stored))
	for key, value := range stored {
		typedKey, ok := storedToTyped[key]
		if !ok {
			continue
		}
		typed[typedKey] = coerce(value)
	}
	return typed
}

// ToStored converts a typed settings map back into stored string form.
// Unknown typed keys fail with a ValidationError; maps and slices are
// serialized to canonical JSON text.
func ToStored(typed map[string]interface{}) (map[string]string, error) {
	stored := make(map[string]string, len(typed))
	for key, value := range typed {
		storedKey, ok := typedToStored[key]
		if !ok {
			return nil, &domain.ValidationError{Field: key, Reason: "unknown setting"}
		}

		text, err := stringify(value)
		if err != nil {
			return nil, &domain.ValidationError{Field: key, Reason: err.Error()}
		}
		stored[storedKey] = text
	}
	return stored, nil
}

func coerce(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if value != "" {
		// ParseFloat accepts "NaN" and "Inf" variants; those must stay
		// strings or the typed map cannot be JSON-encoded.
		if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return n
		}
	}
	return value
}

func stringify(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("value must be a finite number")
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case nil:
		return "", fmt.Errorf("value must not be null")
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("value is not serializable")
		}
		return string(text), nil
	}
}

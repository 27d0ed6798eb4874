package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/littbk/rpg-battle/internal/game"
)

// FieldError describes one patch key that was not applied. A malformed key
// is rejected on its own; the rest of the patch still applies.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

const (
	reasonUnknownField = "unknown field"
	reasonNotAdditive  = "field does not accept additive updates"
	reasonNotNumber    = "must be a number"
	reasonNotInteger   = "must be an integer"
	reasonOutOfRange   = "out of range"
	reasonNotString    = "must be a string"
	reasonNotBool      = "must be a boolean"
)

// ApplyOverwrite sets every field present in patch on c; the patch wins on
// every key it sets. accepted holds the converted value of every applied
// key, ready to be replayed onto another record. Invariants are not
// enforced here; call Normalize afterwards.
func ApplyOverwrite(c *game.Combatant, patch game.Patch) (accepted game.Patch, rejected []FieldError) {
	accepted = make(game.Patch, len(patch))
	for _, key := range sortedKeys(patch) {
		ref, ok := c.FieldRef(game.Field(key))
		if !ok {
			rejected = append(rejected, FieldError{Field: key, Reason: reasonUnknownField})
			continue
		}
		v, reason := assign(ref, patch[key])
		if reason != "" {
			rejected = append(rejected, FieldError{Field: key, Reason: reason})
			continue
		}
		accepted[key] = v
	}
	return accepted, rejected
}

// ApplyAdditive treats every value in deltas as an increment to the stored
// value. Only game.AdditiveFields are accepted. accepted holds the converted
// deltas (not the resulting totals) so a twin can receive the same
// increment.
func ApplyAdditive(c *game.Combatant, deltas game.Patch) (accepted game.Patch, rejected []FieldError) {
	accepted = make(game.Patch, len(deltas))
	for _, key := range sortedKeys(deltas) {
		f := game.Field(key)
		if !game.AdditiveFields.Has(f) {
			rejected = append(rejected, FieldError{Field: key, Reason: reasonNotAdditive})
			continue
		}
		ref, _ := c.FieldRef(f)
		switch p := ref.(type) {
		case *int:
			d, reason := toInt(deltas[key])
			if reason != "" {
				rejected = append(rejected, FieldError{Field: key, Reason: reason})
				continue
			}
			*p += d
			accepted[key] = d
		case *float64:
			d, reason := toFloat(deltas[key])
			if reason != "" {
				rejected = append(rejected, FieldError{Field: key, Reason: reason})
				continue
			}
			*p += d
			accepted[key] = d
		}
	}
	return accepted, rejected
}

// Normalize re-establishes the record invariants: current health and
// energy are clamped down to their maximums (never raised) and the action
// point pools are forced to finite numbers.
func Normalize(c *game.Combatant) {
	if c.HPCurrent > c.HPMax {
		c.HPCurrent = c.HPMax
	}
	if c.EnergyCurrent > c.EnergyMax {
		c.EnergyCurrent = c.EnergyMax
	}
	c.ActionPoints = finiteOrZero(c.ActionPoints)
	c.ActionPointsTemp = finiteOrZero(c.ActionPointsTemp)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func assign(ref interface{}, raw interface{}) (interface{}, string) {
	switch p := ref.(type) {
	case *int:
		v, reason := toInt(raw)
		if reason != "" {
			return nil, reason
		}
		*p = v
		return v, ""
	case *float64:
		v, reason := toFloat(raw)
		if reason != "" {
			return nil, reason
		}
		*p = v
		return v, ""
	case *string:
		v, reason := toString(raw)
		if reason != "" {
			return nil, reason
		}
		*p = v
		return v, ""
	case *bool:
		v, reason := toBool(raw)
		if reason != "" {
			return nil, reason
		}
		*p = v
		return v, ""
	}
	return nil, reasonUnknownField
}

// toFloat accepts any numeric value or numeric string. "NaN" parses and is
// coerced to zero later by Normalize.
func toFloat(raw interface{}) (float64, string) {
	switch v := raw.(type) {
	case float64:
		return v, ""
	case float32:
		return float64(v), ""
	case int:
		return float64(v), ""
	case int64:
		return float64(v), ""
	case int32:
		return float64(v), ""
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, reasonNotNumber
		}
		return f, ""
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, reasonNotNumber
		}
		return f, ""
	}
	return 0, reasonNotNumber
}

func toInt(raw interface{}) (int, string) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		return int(v), ""
	default:
		var reason string
		if f, reason = toFloat(raw); reason != "" {
			return 0, reason
		}
	}
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, reasonNotInteger
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, reasonOutOfRange
	}
	return int(f), ""
}

func toString(raw interface{}) (string, string) {
	switch v := raw.(type) {
	case nil:
		return "", ""
	case string:
		return v, ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), ""
	case int:
		return strconv.Itoa(v), ""
	case json.Number:
		return v.String(), ""
	case bool:
		return strconv.FormatBool(v), ""
	}
	return "", reasonNotString
}

func toBool(raw interface{}) (bool, string) {
	switch v := raw.(type) {
	case bool:
		return v, ""
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, reasonNotBool
		}
		return b, ""
	}
	return false, reasonNotBool
}

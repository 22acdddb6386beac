package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// DefaultVerdictLabel is shown when the service sent no verdict
const DefaultVerdictLabel = "UNKNOWN"

// verdictRule maps a case-insensitive substring to a category
type verdictRule struct {
	substring string
	category  model.VerdictCategory
}

// verdictRules are evaluated in order; the first match wins.
// "false" precedes "true" so labels carrying both classify as FALSE.
var verdictRules = []verdictRule{
	{substring: "false", category: model.VerdictFalse},
	{substring: "true", category: model.VerdictTrue},
	{substring: "partial", category: model.VerdictPartial},
}

// Categorize derives the verdict category from a verdict label
func Categorize(label string) model.VerdictCategory {
	lower := strings.ToLower(label)
	for _, rule := range verdictRules {
		if strings.Contains(lower, rule.substring) {
			return rule.category
		}
	}
	return model.VerdictUnknown
}

// ParseConfidence converts a loosely typed confidence value to a number.
// Returns nil for absent or non-numeric values.
func ParseConfidence(raw any) *float64 {
	var f float64

	switch v := raw.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/antonholmquist/jason"

	"github.com/ppiankov/factlens/internal/model"
)

// NoExplanation is shown when the service sent no usable explanation
const NoExplanation = "No explanation provided"

// maxNestingDepth bounds how many embedded payloads are unwrapped
const maxNestingDepth = 3

// encodedKeys mark an explanation that is itself a serialized verdict
var encodedKeys = []string{`"verdict"`, `"confidence"`, `"explanation"`}

var (
	codeFence     = regexp.MustCompile("(?i)^```(?:json)?\\s*|\\s*```$")
	labelToken    = regexp.MustCompile(`(?i)^json\b\s*:?\s*`)
	urlToken      = regexp.MustCompile(`(?i)https?://[^\s,\[\]()<>]+`)
	sourcesLabel  = regexp.MustCompile(`(?i)sources:\s*\[[^\]]*(?:\]|$)`)
	confLabel     = regexp.MustCompile(`(?i)confidence:\s*\d+(?:\.\d+)?%?`)
	verdictLabel  = regexp.MustCompile(`(?i)verdict:\s*`)
	explainLabel  = regexp.MustCompile(`(?i)explanation:\s*`)
	commaRun      = regexp.MustCompile(`\s*,(?:\s*,)*\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	stripChars    = strings.NewReplacer("{", "", "}", "", `"`, "")
)

// Explanation is the outcome of resolving a raw explanation value
type Explanation struct {
	Text string
	// Sources found inside a decoded payload; they replace the outer sources
	Sources []any
	// FallbackSources are URL tokens recovered by textual cleanup; they are
	// used only when the outer sources are empty
	FallbackSources []any
	Recovery        model.Recovery
}

// ResolveExplanation turns a raw explanation value into display text.
// Plain strings pass through unchanged.
func ResolveExplanation(raw any) Explanation {
	switch v := raw.(type) {
	case nil:
		return Explanation{Text: NoExplanation, Recovery: model.RecoveryNone}
	case string:
		if strings.TrimSpace(v) == "" {
			return Explanation{Text: NoExplanation, Recovery: model.RecoveryNone}
		}
		if !LooksEncoded(v) {
			return Explanation{Text: v, Recovery: model.RecoveryNone}
		}
		return decodeString(v, 0)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return Explanation{Text: NoExplanation, Recovery: model.RecoveryTextual}
		}
		obj, err := jason.NewObjectFromBytes(data)
		if err != nil {
			return cleanupText(string(data))
		}
		return fromObject(obj, string(data), 0)
	case []any:
		var parts []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		if len(parts) == 0 {
			return Explanation{Text: NoExplanation, Recovery: model.RecoveryNone}
		}
		return Explanation{Text: strings.Join(parts, " "), Recovery: model.RecoveryNone}
	default:
		return Explanation{Text: fmt.Sprint(v), Recovery: model.RecoveryNone}
	}
}

// LooksEncoded reports whether s carries a quoted verdict field name
func LooksEncoded(s string) bool {
	for _, key := range encodedKeys {
		if strings.Contains(s, key) {
			return true
		}
	}
	return false
}

// decodeString runs the structured stage and falls back to textual cleanup
func decodeString(s string, depth int) Explanation {
	if obj, ok := parseEmbedded(s); ok {
		return fromObject(obj, s, depth)
	}
	return cleanupText(s)
}

// parseEmbedded is the structured stage: strip the label token, then try the
// whole remainder and finally the outermost {...} span.
func parseEmbedded(s string) (*jason.Object, bool) {
	body := StripLabel(s)

	if obj, err := jason.NewObjectFromBytes([]byte(body)); err == nil {
		return obj, true
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start == -1 || end <= start {
		return nil, false
	}

	obj, err := jason.NewObjectFromBytes([]byte(body[start : end+1]))
	if err != nil {
		return nil, false
	}
	return obj, true
}

// StripLabel removes a Markdown code fence and a leading "json" label token
func StripLabel(s string) string {
	body := strings.TrimSpace(s)
	body = strings.TrimSpace(codeFence.ReplaceAllString(body, ""))
	return strings.TrimSpace(labelToken.ReplaceAllString(body, ""))
}

func fromObject(obj *jason.Object, original string, depth int) Explanation {
	out := Explanation{Recovery: model.RecoveryStructured}

	if sources, err := obj.GetValueArray("sources"); err == nil {
		raw := make([]any, 0, len(sources))
		for _, v := range sources {
			raw = append(raw, plainValue(v))
		}
		if len(usableSources(raw)) > 0 {
			out.Sources = raw
		}
	}

	text, nested, ok := innerExplanation(obj, depth)
	switch {
	case ok:
		out.Text = text
		if len(out.Sources) == 0 {
			out.Sources = nested.Sources
		}
		out.FallbackSources = nested.FallbackSources
	case hasScalar(obj, "verdict"):
		out.Text = synthesize(obj)
	default:
		// Neither an explanation nor a verdict: fall back to readable text
		cleaned := cleanupText(original)
		cleaned.Sources = out.Sources
		return cleaned
	}

	return out
}

// innerExplanation extracts the embedded explanation, unwrapping nested payloads
func innerExplanation(obj *jason.Object, depth int) (string, Explanation, bool) {
	value, err := obj.GetValue("explanation")
	if err != nil {
		return "", Explanation{}, false
	}

	if s, err := value.String(); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", Explanation{}, false
		}
		if LooksEncoded(s) && depth < maxNestingDepth {
			nested := decodeString(s, depth+1)
			return nested.Text, nested, true
		}
		return s, Explanation{}, true
	}

	if inner, err := value.Object(); err == nil && depth < maxNestingDepth {
		data, _ := value.Marshal()
		nested := fromObject(inner, string(data), depth+1)
		return nested.Text, nested, true
	}

	return "", Explanation{}, false
}

func synthesize(obj *jason.Object) string {
	verdict, _ := scalarString(obj, "verdict")
	text := "Verdict: " + verdict

	if value, err := obj.GetValue("confidence"); err == nil {
		if conf := ParseConfidence(plainValue(value)); conf != nil {
			text += fmt.Sprintf(" (Confidence: %s%%)", formatNumber(*conf))
		}
	}
	return text
}

func hasScalar(obj *jason.Object, key string) bool {
	s, ok := scalarString(obj, key)
	return ok && strings.TrimSpace(s) != ""
}

func scalarString(obj *jason.Object, key string) (string, bool) {
	value, err := obj.GetValue(key)
	if err != nil {
		return "", false
	}
	switch v := plainValue(value).(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	case bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// cleanupText is the textual stage for payloads that do not parse: it strips
// JSON punctuation and field labels, leaving best-effort prose.
func cleanupText(s string) Explanation {
	text := strings.TrimSpace(s)
	text = codeFence.ReplaceAllString(text, "")
	text = labelToken.ReplaceAllString(strings.TrimSpace(text), "")
	text = stripChars.Replace(text)

	var urls []any
	for _, u := range urlToken.FindAllString(text, -1) {
		if u = strings.TrimRight(u, ".;:!?'"); u != "" {
			urls = append(urls, u)
		}
	}

	text = sourcesLabel.ReplaceAllString(text, "")
	text = confLabel.ReplaceAllString(text, "")
	text = verdictLabel.ReplaceAllString(text, "")
	text = explainLabel.ReplaceAllString(text, "")
	text = commaRun.ReplaceAllString(text, ", ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.Trim(text, " ,")

	if text == "" {
		text = NoExplanation
	}

	return Explanation{Text: text, FallbackSources: urls, Recovery: model.RecoveryTextual}
}

// plainValue converts a jason value to plain Go values.
// Numbers stay json.Number; undecodable values yield nil.
func plainValue(v *jason.Value) any {
	if v == nil {
		return nil
	}
	data, err := v.Marshal()
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

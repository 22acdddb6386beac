package normalize

import (
	"encoding/json"
	"testing"

	"github.com/antonholmquist/jason"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factlens/internal/model"
)

func decodeClaim(t *testing.T, body string) model.RawClaimResult {
	t.Helper()
	var raw model.RawClaimResult
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func strPtr(s string) *string { return &s }

func TestNormalize_MissingResult(t *testing.T) {
	inputs := []string{
		`{"claim": "The sky is green"}`,
		`{"claim": "The sky is green", "result": null}`,
		`{"claim": "The sky is green", "result": "not an object"}`,
		`{"claim": "The sky is green", "result": [1, 2]}`,
		`"just a string"`,
		`42`,
	}

	for _, body := range inputs {
		t.Run(body, func(t *testing.T) {
			got := Normalize(decodeClaim(t, body))
			assert.Equal(t, model.VerdictUnknown, got.VerdictCategory)
			assert.Equal(t, DefaultVerdictLabel, got.VerdictLabel)
			assert.Equal(t, InvalidResultText, got.ExplanationText)
			assert.Empty(t, got.Sources)
			assert.NotNil(t, got.Sources)
			assert.Nil(t, got.ConfidencePercent)
			assert.Equal(t, model.RecoveryInvalid, got.Recovery)
		})
	}
}

func TestNormalize_ZeroValue(t *testing.T) {
	got := Normalize(model.RawClaimResult{})
	assert.Equal(t, UnknownClaimText, got.ClaimText)
	assert.Equal(t, model.OriginText, got.OriginKind)
	assert.Equal(t, InvalidResultText, got.ExplanationText)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		label string
		want  model.VerdictCategory
	}{
		{"TRUE", model.VerdictTrue},
		{"true", model.VerdictTrue},
		{"Mostly True", model.VerdictTrue},
		{"FALSE", model.VerdictFalse},
		{"fAlSe", model.VerdictFalse},
		{"TRUE or FALSE", model.VerdictFalse},
		{"not true, false", model.VerdictFalse},
		{"PARTIALLY ACCURATE", model.VerdictPartial},
		{"Partial", model.VerdictPartial},
		{"PARTIALLY TRUE", model.VerdictTrue},
		{"UNVERIFIABLE", model.VerdictUnknown},
		{"INSUFFICIENT EVIDENCE", model.VerdictUnknown},
		{"", model.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.label))
		})
	}
}

func TestNormalize_VerdictDefault(t *testing.T) {
	got := Normalize(decodeClaim(t, `{"claim": "c", "result": {"explanation": "e"}}`))
	assert.Equal(t, DefaultVerdictLabel, got.VerdictLabel)
	assert.Equal(t, model.VerdictUnknown, got.VerdictCategory)
	assert.Equal(t, model.RecoveryNone, got.Recovery)

	got = Normalize(decodeClaim(t, `{"claim": "c", "result": {"verdict": "  ", "explanation": "e"}}`))
	assert.Equal(t, DefaultVerdictLabel, got.VerdictLabel)
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *float64
	}{
		{"json number", json.Number("85"), ptrF(85)},
		{"float", 72.5, ptrF(72.5)},
		{"int", 90, ptrF(90)},
		{"numeric string", "60", ptrF(60)},
		{"percent string", " 45% ", ptrF(45)},
		{"word", "high", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
		{"nan string", "NaN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseConfidence(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func ptrF(f float64) *float64 { return &f }

func TestNormalize_ConfidenceDisplay(t *testing.T) {
	got := Normalize(decodeClaim(t, `{"claim": "c", "result": {"verdict": "TRUE", "confidence": 85}}`))
	assert.Equal(t, "85%", got.ConfidenceDisplay())

	got = Normalize(decodeClaim(t, `{"claim": "c", "result": {"verdict": "TRUE", "confidence": "unsure"}}`))
	assert.Equal(t, "N/A", got.ConfidenceDisplay())
}

func TestNormalize_PlainExplanationUnchanged(t *testing.T) {
	plain := []string{
		"The claim is accurate according to census data.",
		"  Leading and trailing space is kept  ",
		"Mentions {braces} and \"quotes\" but no field names",
		"verdict: TRUE without quoted keys",
	}

	for _, text := range plain {
		res := ResolveExplanation(text)
		assert.Equal(t, text, res.Text)
		assert.Equal(t, model.RecoveryNone, res.Recovery)
	}
}

func TestNormalize_EmbeddedPayload(t *testing.T) {
	explanation := `json {"verdict":"FALSE","confidence":80,"explanation":"X is wrong","sources":["https://a.com/page"]}`
	raw := model.RawClaimResult{
		Claim: strPtr("X is right"),
		Result: &model.RawVerdict{
			Verdict:     strPtr("FALSE"),
			Explanation: explanation,
			Sources:     []any{"https://outer.example/ignored"},
		},
	}

	got := Normalize(raw)
	assert.Equal(t, "X is wrong", got.ExplanationText)
	assert.Equal(t, []model.SourceRef{
		{RawValue: "https://a.com/page", DisplayLabel: "a.com/page", IsLink: true},
	}, got.Sources)
	assert.Equal(t, model.RecoveryStructured, got.Recovery)
	assert.Equal(t, model.VerdictFalse, got.VerdictCategory)
}

func TestNormalize_EmbeddedPayloadWithoutSourcesKeepsOuter(t *testing.T) {
	raw := model.RawClaimResult{
		Claim: strPtr("c"),
		Result: &model.RawVerdict{
			Verdict:     strPtr("TRUE"),
			Explanation: "```json\n{\"explanation\": \"Confirmed by records\", \"sources\": []}\n```",
			Sources:     []any{"https://outer.example/doc"},
		},
	}

	got := Normalize(raw)
	assert.Equal(t, "Confirmed by records", got.ExplanationText)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://outer.example/doc", got.Sources[0].RawValue)
}

func TestNormalize_SynthesizedExplanation(t *testing.T) {
	res := ResolveExplanation(`{"verdict": "TRUE", "confidence": 90}`)
	assert.Equal(t, "Verdict: TRUE (Confidence: 90%)", res.Text)
	assert.Equal(t, model.RecoveryStructured, res.Recovery)

	res = ResolveExplanation(`{"verdict": "PARTIALLY TRUE"}`)
	assert.Equal(t, "Verdict: PARTIALLY TRUE", res.Text)
}

func TestNormalize_NestedPayload(t *testing.T) {
	inner := `{"verdict": "FALSE", "explanation": "Deep reason", "sources": ["https://deep.example/x"]}`
	outer, err := json.Marshal(map[string]any{"verdict": "FALSE", "explanation": inner})
	require.NoError(t, err)

	res := ResolveExplanation(string(outer))
	assert.Equal(t, "Deep reason", res.Text)
	assert.Equal(t, []any{"https://deep.example/x"}, res.Sources)
}

func TestNormalize_ObjectExplanation(t *testing.T) {
	got := Normalize(decodeClaim(t, `{
		"claim": "c",
		"result": {
			"verdict": "FALSE",
			"explanation": {"explanation": "From an object", "sources": ["https://obj.example/a"]},
			"sources": []
		}
	}`))
	assert.Equal(t, "From an object", got.ExplanationText)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "obj.example/a", got.Sources[0].DisplayLabel)
}

func TestNormalize_MalformedPayload(t *testing.T) {
	raw := model.RawClaimResult{
		Claim: strPtr("c"),
		Result: &model.RawVerdict{
			Verdict:     strPtr("FALSE"),
			Explanation: `{"verdict": FALSE, bad json, see https://b.org/x`,
		},
	}

	got := Normalize(raw)
	assert.Equal(t, model.RecoveryTextual, got.Recovery)
	assert.NotContains(t, got.ExplanationText, "{")
	assert.NotContains(t, got.ExplanationText, `"`)
	assert.NotContains(t, got.ExplanationText, "verdict:")
	assert.Contains(t, got.ExplanationText, "bad json")
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://b.org/x", got.Sources[0].RawValue)
	assert.True(t, got.Sources[0].IsLink)
}

func TestNormalize_MalformedPayloadKeepsOuterSources(t *testing.T) {
	raw := model.RawClaimResult{
		Claim: strPtr("c"),
		Result: &model.RawVerdict{
			Explanation: `{"verdict": FALSE, bad json https://b.org/x`,
			Sources:     []any{"https://outer.example/a"},
		},
	}

	got := Normalize(raw)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://outer.example/a", got.Sources[0].RawValue)
}

func TestCleanupText(t *testing.T) {
	res := cleanupText(`json {"verdict": "TRUE",, "confidence": 75, "explanation": "Mostly right", "sources": ["https://c.org/y"`)
	assert.Equal(t, "TRUE, Mostly right", res.Text)
	assert.Equal(t, []any{"https://c.org/y"}, res.FallbackSources)

	res = cleanupText(`{"verdict": }`)
	assert.Equal(t, NoExplanation, res.Text)
}

func TestResolveExplanation_Absent(t *testing.T) {
	assert.Equal(t, NoExplanation, ResolveExplanation(nil).Text)
	assert.Equal(t, NoExplanation, ResolveExplanation("   ").Text)
	assert.Equal(t, "a b", ResolveExplanation([]any{"a", 3, " b "}).Text)
	assert.Equal(t, "12", ResolveExplanation(json.Number("12")).Text)
}

func TestBuildSources(t *testing.T) {
	got := BuildSources([]any{" https://www.Example.com/news/ ", "", 7, nil, "Reuters archive", "  "})
	assert.Equal(t, []model.SourceRef{
		{RawValue: "https://www.Example.com/news/", DisplayLabel: "example.com/news", IsLink: true},
		{RawValue: "Reuters archive", DisplayLabel: "Source 2", IsLink: false},
	}, got)

	assert.Empty(t, BuildSources(nil))
}

func TestLinkLabel_Truncation(t *testing.T) {
	// 28-character path is kept verbatim
	exact := "/abcdefghijklmnopqrstuvwxyz0"
	require.Len(t, exact, 28)
	label, ok := LinkLabel("https://site.org" + exact)
	require.True(t, ok)
	assert.Equal(t, "site.org"+exact, label)

	long := "/abcdefghijklmnopqrstuvwxyz01"
	require.Len(t, long, 29)
	label, ok = LinkLabel("https://site.org" + long)
	require.True(t, ok)
	assert.Equal(t, "site.org/abcdefghijklmnopqrstuvwx…", label)

	_, ok = LinkLabel("not a url")
	assert.False(t, ok)
	_, ok = LinkLabel("mailto:someone@example.com")
	assert.False(t, ok)
}

func TestNormalize_ImageOrigin(t *testing.T) {
	got := Normalize(decodeClaim(t, `{"claim": "Chart shows growth", "source_type": "image", "image_url": "https://img.example/1.png", "result": {"verdict": "TRUE"}}`))
	assert.Equal(t, model.OriginImage, got.OriginKind)
	require.NotNil(t, got.ImageRef)
	assert.Equal(t, "https://img.example/1.png", *got.ImageRef)

	got = Normalize(decodeClaim(t, `{"claim": "[Image] Caption claim", "result": {"verdict": "FALSE"}}`))
	assert.Equal(t, model.OriginImage, got.OriginKind)
	assert.Equal(t, "Caption claim", got.ClaimText)
	assert.Nil(t, got.ImageRef)

	got = Normalize(decodeClaim(t, `{"claim": "Text claim", "source_type": "text", "image_url": "https://img.example/1.png", "result": {"verdict": "FALSE"}}`))
	assert.Equal(t, model.OriginText, got.OriginKind)
	assert.Nil(t, got.ImageRef)
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	claims := NormalizeAll([]model.RawClaimResult{
		{Claim: strPtr("one")},
		{Claim: strPtr("two"), Result: &model.RawVerdict{Verdict: strPtr("TRUE")}},
		{Claim: strPtr("three")},
	})
	require.Len(t, claims, 3)
	assert.Equal(t, "one", claims[0].ClaimText)
	assert.Equal(t, "two", claims[1].ClaimText)
	assert.Equal(t, "three", claims[2].ClaimText)
}

func TestPlainValue(t *testing.T) {
	obj, err := jason.NewObjectFromBytes([]byte(`{"n": 85, "s": "85%", "b": true, "list": ["https://a.com", 2, null], "z": null}`))
	require.NoError(t, err)

	value := func(key string) any {
		v, err := obj.GetValue(key)
		require.NoError(t, err)
		return plainValue(v)
	}

	assert.Equal(t, json.Number("85"), value("n"))
	assert.Equal(t, "85%", value("s"))
	assert.Equal(t, true, value("b"))
	assert.Equal(t, []any{"https://a.com", json.Number("2"), nil}, value("list"))
	assert.Nil(t, value("z"))
	assert.Nil(t, plainValue(nil))
}

func TestResolveExplanation_PercentStringConfidence(t *testing.T) {
	res := ResolveExplanation(`{"verdict": "MISLEADING", "confidence": "85%"}`)
	assert.Equal(t, "Verdict: MISLEADING (Confidence: 85%)", res.Text)
}

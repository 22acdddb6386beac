package llm

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeProvider struct {
	content string
	err     error
	last    CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResponse{Content: f.content}, nil
}

func TestParseClaimList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    []string
	}{
		{"numbered", "1. Water boils at 100C.\n2) The moon is made of rock.", 6, []string{"Water boils at 100C.", "The moon is made of rock."}},
		{"bullets", "- First claim\n* Second claim\n\n", 6, []string{"First claim", "Second claim"}},
		{"none", "NONE", 6, nil},
		{"none with punctuation", "  None.  ", 6, nil},
		{"no factual claims", "No factual claims!", 6, nil},
		{"capped", "1. a\n2. b\n3. c", 2, []string{"a", "b"}},
		{"inline none skipped", "1. real claim\nNONE", 6, []string{"real claim"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseClaimList(tt.content, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseClaimList() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseVerdict_JSON(t *testing.T) {
	content := "```json\n{\"verdict\": \"TRUE\", \"confidence\": 92, \"explanation\": \"Confirmed.\", \"sources\": [\"https://a.org/x\", \"[1] Some book\"]}\n```"

	v := ParseVerdict(content)
	if v.Verdict == nil || *v.Verdict != "TRUE" {
		t.Errorf("Verdict = %v, want TRUE", v.Verdict)
	}
	if v.Confidence != json.Number("92") {
		t.Errorf("Confidence = %v, want 92", v.Confidence)
	}
	if v.Explanation != "Confirmed." {
		t.Errorf("Explanation = %v", v.Explanation)
	}
	if !reflect.DeepEqual(v.Sources, []any{"https://a.org/x"}) {
		t.Errorf("Sources = %v, want only URL sources", v.Sources)
	}
}

func TestParseVerdict_Defaults(t *testing.T) {
	v := ParseVerdict(`Here you go: {"explanation": "See https://b.com/page for details"}`)

	if *v.Verdict != defaultVerdict {
		t.Errorf("Verdict = %s, want %s", *v.Verdict, defaultVerdict)
	}
	if v.Confidence != json.Number("75") {
		t.Errorf("Confidence = %v, want 75", v.Confidence)
	}
	if !reflect.DeepEqual(v.Sources, []any{"https://b.com/page"}) {
		t.Errorf("Sources = %v, want URL from explanation", v.Sources)
	}
}

func TestParseVerdict_NotJSON(t *testing.T) {
	content := "The claim is mostly accurate according to https://c.net/a."

	v := ParseVerdict(content)
	if *v.Verdict != undecodedVerdict {
		t.Errorf("Verdict = %s", *v.Verdict)
	}
	if v.Explanation != content {
		t.Errorf("Explanation should keep raw content, got %v", v.Explanation)
	}
	if len(v.Sources) != 1 || !strings.HasPrefix(v.Sources[0].(string), "https://c.net/a") {
		t.Errorf("Sources = %v", v.Sources)
	}

	v = ParseVerdict("No links here")
	if !reflect.DeepEqual(v.Sources, []any{undecodedSource}) {
		t.Errorf("Sources = %v, want placeholder", v.Sources)
	}
}

func TestFactChecker_ExtractClaims(t *testing.T) {
	p := &fakeProvider{content: "1. One\n2. Two"}
	c := NewFactChecker(p)

	claims, err := c.ExtractClaims(context.Background(), "Some text with claims.", 6)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(claims, []string{"One", "Two"}) {
		t.Errorf("claims = %v", claims)
	}
	if p.last.MaxTokens != claimsMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", p.last.MaxTokens, claimsMaxTokens)
	}
	if !strings.Contains(p.last.Prompt, "up to 6 factual claims") {
		t.Errorf("prompt missing claim limit: %s", p.last.Prompt)
	}

	claims, err = c.ExtractClaims(context.Background(), "   ", 6)
	if err != nil || claims != nil {
		t.Errorf("blank text: claims = %v, err = %v", claims, err)
	}
}

func TestFactChecker_ExtractImageClaims(t *testing.T) {
	p := &fakeProvider{content: "1. Chart shows 40% growth"}
	c := NewFactChecker(p)

	claims, err := c.ExtractImageClaims(context.Background(), "https://img.example/a.png", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(claims) != 1 || p.last.ImageURL != "https://img.example/a.png" {
		t.Errorf("claims = %v, image = %s", claims, p.last.ImageURL)
	}
}

func TestFactChecker_CheckClaimError(t *testing.T) {
	c := NewFactChecker(&fakeProvider{err: errors.New("boom")})

	if _, err := c.CheckClaim(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}

	v := FailedVerdict(errors.New("boom"))
	if *v.Verdict != "ERROR" || !strings.Contains(v.Explanation.(string), "no-response") {
		t.Errorf("FailedVerdict() = %+v", v)
	}
}

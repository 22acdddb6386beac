package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/normalize"
)

const (
	claimsMaxTokens = 350
	maxVerdictURLs  = 5

	// Defaults applied to decoded answers missing a field
	defaultVerdict     = "INSUFFICIENT EVIDENCE"
	defaultExplanation = "Analysis completed"
	defaultConfidence  = "75"

	// Applied to answers that are not JSON at all
	undecodedVerdict = "ANALYSIS COMPLETE"
	undecodedSource  = "Model analysis"
)

var (
	listMarker  = regexp.MustCompile(`^\d+[).]\s*`)
	noneNoise   = regexp.MustCompile(`[\s.!:]+`)
	verdictURLs = regexp.MustCompile(`(?i)https?://[^\s)\]}]+`)
	httpPrefix  = regexp.MustCompile(`(?i)^https?://`)
)

var noneReplies = map[string]bool{
	"none":              true,
	"no claims":         true,
	"no factual claims": true,
}

// FactChecker extracts and checks claims through a chat model
type FactChecker struct {
	provider Provider
}

// NewFactChecker creates a fact checker over provider
func NewFactChecker(provider Provider) *FactChecker {
	return &FactChecker{provider: provider}
}

// Provider returns the underlying provider
func (c *FactChecker) Provider() Provider {
	return c.provider
}

// ExtractClaims returns up to maxClaims claims stated in text
func (c *FactChecker) ExtractClaims(ctx context.Context, text string, maxClaims int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		Prompt:    BuildClaimsPrompt(text, maxClaims),
		MaxTokens: claimsMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	return ParseClaimList(resp.Content, maxClaims), nil
}

// ExtractImageClaims returns up to maxClaims claims shown in an image.
// imageURL is an http(s) URL or a data URI.
func (c *FactChecker) ExtractImageClaims(ctx context.Context, imageURL string, maxClaims int) ([]string, error) {
	if imageURL == "" {
		return nil, nil
	}

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		Prompt:   BuildImageClaimsPrompt(),
		ImageURL: imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("extract image claims: %w", err)
	}

	return ParseClaimList(resp.Content, maxClaims), nil
}

// CheckClaim fact-checks one claim
func (c *FactChecker) CheckClaim(ctx context.Context, claim string) (*model.RawVerdict, error) {
	resp, err := c.provider.Complete(ctx, CompletionRequest{Prompt: BuildFactCheckPrompt(claim)})
	if err != nil {
		return nil, fmt.Errorf("check claim: %w", err)
	}
	return ParseVerdict(resp.Content), nil
}

// ParseClaimList reads a numbered or bulleted list, honouring a NONE reply
func ParseClaimList(content string, maxClaims int) []string {
	normalized := strings.TrimSpace(noneNoise.ReplaceAllString(strings.ToLower(strings.TrimSpace(content)), " "))
	if noneReplies[normalized] {
		return nil
	}

	var claims []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "-*")
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || noneReplies[strings.ToLower(line)] {
			continue
		}
		claims = append(claims, line)
	}

	if maxClaims > 0 && len(claims) > maxClaims {
		claims = claims[:maxClaims]
	}
	return claims
}

// ParseVerdict converts a model answer into a verdict record. Answers that
// are not JSON keep the raw content as the explanation.
func ParseVerdict(content string) *model.RawVerdict {
	if raw, ok := jsonObject(content); ok {
		var v model.RawVerdict
		_ = json.Unmarshal(raw, &v)

		if urls := verdictSourceURLs(&v); len(urls) > 0 {
			v.Sources = urls
		}
		if v.Verdict == nil {
			v.Verdict = strPtr(defaultVerdict)
		}
		if v.Confidence == nil {
			v.Confidence = json.Number(defaultConfidence)
		}
		if v.Explanation == nil {
			v.Explanation = defaultExplanation
		}
		return &v
	}

	sources := []any{undecodedSource}
	if urls := findURLs(content); len(urls) > 0 {
		sources = urls
	}

	return &model.RawVerdict{
		Verdict:     strPtr(undecodedVerdict),
		Confidence:  json.Number(defaultConfidence),
		Explanation: content,
		Sources:     sources,
	}
}

// FailedVerdict describes a claim whose check request failed
func FailedVerdict(err error) *model.RawVerdict {
	status := "no-response"
	if code := StatusCode(err); code != 0 {
		status = fmt.Sprint(code)
	}
	return &model.RawVerdict{
		Verdict:     strPtr("ERROR"),
		Confidence:  json.Number("0"),
		Explanation: fmt.Sprintf("Failed to verify claim (upstream status: %s)", status),
		Sources:     []any{},
	}
}

// jsonObject finds a JSON object in content, tolerating a code fence,
// a "json" label and surrounding prose
func jsonObject(content string) ([]byte, bool) {
	body := normalize.StripLabel(content)
	if isObject(body) {
		return []byte(body), true
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start == -1 || end <= start {
		return nil, false
	}
	if span := body[start : end+1]; isObject(span) {
		return []byte(span), true
	}
	return nil, false
}

func isObject(s string) bool {
	var fields map[string]json.RawMessage
	return json.Unmarshal([]byte(s), &fields) == nil && fields != nil
}

// verdictSourceURLs keeps http(s) sources, falling back to URLs in the
// explanation
func verdictSourceURLs(v *model.RawVerdict) []any {
	var urls []any
	for _, s := range v.Sources {
		if str, ok := s.(string); ok && httpPrefix.MatchString(strings.TrimSpace(str)) {
			urls = append(urls, strings.TrimSpace(str))
		}
	}
	if len(urls) == 0 {
		if explanation, ok := v.Explanation.(string); ok {
			urls = findURLs(explanation)
		}
	}
	if len(urls) > maxVerdictURLs {
		urls = urls[:maxVerdictURLs]
	}
	return urls
}

func findURLs(text string) []any {
	var urls []any
	for _, u := range verdictURLs.FindAllString(text, maxVerdictURLs) {
		urls = append(urls, u)
	}
	return urls
}

func strPtr(s string) *string { return &s }

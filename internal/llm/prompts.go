package llm

import (
	"fmt"

	"github.com/ppiankov/factlens/internal/util"
)

// maxPromptChars bounds the text sent for claim extraction
const maxPromptChars = 6000

// BuildClaimsPrompt asks for explicit factual claims as a numbered list
func BuildClaimsPrompt(text string, maxClaims int) string {
	return fmt.Sprintf(`Extract up to %d factual claims EXPLICITLY stated in this text. Do not infer, assume, or use outside knowledge. Do not generate claims about people/entities unless directly asserted in the text. Return ONLY a numbered list. If there are no factual claims, reply with EXACTLY 'NONE'.

Text: %s`, maxClaims, util.Truncate(text, maxPromptChars))
}

// BuildImageClaimsPrompt asks for verifiable claims shown in an image
func BuildImageClaimsPrompt() string {
	return "Analyze this image. Extract all factual claims that a third-party could verify. " +
		"Return ONLY the claims as a numbered list. If none, respond with 'NONE'."
}

// BuildFactCheckPrompt asks for a JSON verdict on one claim
func BuildFactCheckPrompt(claim string) string {
	return fmt.Sprintf(`Fact-check this claim with high accuracy. Provide:
1. Verdict (TRUE/FALSE/PARTIALLY TRUE/INSUFFICIENT EVIDENCE)
2. Confidence level (0-100%%)
3. Brief explanation (2-3 sentences)
4. Key sources used as a list of canonical URLs. Each source MUST be a full http(s) URL. Do not include reference numbers or titles, only URLs.

Claim: %s

Format your response as JSON with keys: verdict, confidence, explanation, sources`, claim)
}

// Package normalize turns untrusted claim records into display-ready claims.
//
// Normalize is total: any shape the service sends, including missing or
// malformed fields, yields a NormalizedClaim built from documented defaults.
package normalize

import (
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

const (
	// InvalidResultText explains a claim record without a result object
	InvalidResultText = "Invalid result structure received from API"
	// UnknownClaimText stands in for a missing claim text
	UnknownClaimText = "Unknown claim"

	imagePrefix = "[Image] "
)

// Normalize builds a NormalizedClaim from a raw claim record
func Normalize(raw model.RawClaimResult) (claim model.NormalizedClaim) {
	text, origin, imageRef := claimOrigin(raw)

	defer func() {
		if r := recover(); r != nil {
			claim = invalidClaim(text, origin, imageRef)
		}
	}()

	if raw.Result == nil {
		return invalidClaim(text, origin, imageRef)
	}

	label := DefaultVerdictLabel
	if v := raw.Result.Verdict; v != nil && strings.TrimSpace(*v) != "" {
		label = strings.TrimSpace(*v)
	}

	explanation := ResolveExplanation(raw.Result.Explanation)

	sources := raw.Result.Sources
	switch {
	case len(explanation.Sources) > 0:
		sources = explanation.Sources
	case len(usableSources(sources)) == 0 && len(explanation.FallbackSources) > 0:
		sources = explanation.FallbackSources
	}

	return model.NormalizedClaim{
		ClaimText:         text,
		OriginKind:        origin,
		ImageRef:          imageRef,
		VerdictCategory:   Categorize(label),
		VerdictLabel:      label,
		ConfidencePercent: ParseConfidence(raw.Result.Confidence),
		ExplanationText:   explanation.Text,
		Sources:           BuildSources(sources),
		Recovery:          explanation.Recovery,
	}
}

// NormalizeAll normalizes every record, preserving order
func NormalizeAll(raws []model.RawClaimResult) []model.NormalizedClaim {
	claims := make([]model.NormalizedClaim, 0, len(raws))
	for _, raw := range raws {
		claims = append(claims, Normalize(raw))
	}
	return claims
}

func invalidClaim(text string, origin model.OriginKind, imageRef *string) model.NormalizedClaim {
	return model.NormalizedClaim{
		ClaimText:       text,
		OriginKind:      origin,
		ImageRef:        imageRef,
		VerdictCategory: model.VerdictUnknown,
		VerdictLabel:    DefaultVerdictLabel,
		ExplanationText: InvalidResultText,
		Sources:         []model.SourceRef{},
		Recovery:        model.RecoveryInvalid,
	}
}

// claimOrigin resolves the display text, origin kind and image reference.
// Records without a source_type but with the "[Image] " text prefix are
// image claims whose image is not identified.
func claimOrigin(raw model.RawClaimResult) (string, model.OriginKind, *string) {
	text := ""
	if raw.Claim != nil {
		text = strings.TrimSpace(*raw.Claim)
	}

	origin := model.OriginText
	switch {
	case raw.SourceType != nil:
		if strings.EqualFold(strings.TrimSpace(*raw.SourceType), string(model.OriginImage)) {
			origin = model.OriginImage
		}
	case strings.HasPrefix(text, imagePrefix):
		origin = model.OriginImage
		text = strings.TrimSpace(strings.TrimPrefix(text, imagePrefix))
	}

	if text == "" {
		text = UnknownClaimText
	}

	var imageRef *string
	if origin == model.OriginImage && raw.ImageURL != nil {
		if ref := strings.TrimSpace(*raw.ImageURL); ref != "" {
			imageRef = &ref
		}
	}

	return text, origin, imageRef
}

// Package group partitions normalized claims by origin for display.
package group

import "github.com/ppiankov/factlens/internal/model"

// ImageGroup holds the claims extracted from one analyzed image.
// HasRef is false for the synthetic bucket of image claims without a reference.
type ImageGroup struct {
	Ref    string                  `json:"image_ref,omitempty"`
	HasRef bool                    `json:"has_ref"`
	Claims []model.NormalizedClaim `json:"claims"`
}

// Grouped is the display partition of one response
type Grouped struct {
	Text   []model.NormalizedClaim `json:"text_claims"`
	Images []ImageGroup            `json:"image_groups"`
}

// Empty reports whether no claims were grouped
func (g Grouped) Empty() bool {
	return len(g.Text) == 0 && len(g.Images) == 0
}

// Len returns the total number of grouped claims
func (g Grouped) Len() int {
	n := len(g.Text)
	for _, img := range g.Images {
		n += len(img.Claims)
	}
	return n
}

// Group splits claims into text claims and per-image buckets.
// Buckets follow the first appearance of each image reference; image claims
// without a reference are collected in a final bucket.
func Group(claims []model.NormalizedClaim) Grouped {
	out := Grouped{
		Text:   []model.NormalizedClaim{},
		Images: []ImageGroup{},
	}

	index := make(map[string]int)
	var orphans []model.NormalizedClaim

	for _, claim := range claims {
		if claim.OriginKind != model.OriginImage {
			out.Text = append(out.Text, claim)
			continue
		}

		if claim.ImageRef == nil || *claim.ImageRef == "" {
			orphans = append(orphans, claim)
			continue
		}

		ref := *claim.ImageRef
		i, ok := index[ref]
		if !ok {
			i = len(out.Images)
			index[ref] = i
			out.Images = append(out.Images, ImageGroup{Ref: ref, HasRef: true})
		}
		out.Images[i].Claims = append(out.Images[i].Claims, claim)
	}

	if len(orphans) > 0 {
		out.Images = append(out.Images, ImageGroup{Claims: orphans})
	}

	return out
}

package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RawClaimResult is one claim record as received from the fact-checking service.
// Every field is optional; decoding never fails on a malformed entry.
type RawClaimResult struct {
	Claim      *string     `json:"claim,omitempty"`
	SourceType *string     `json:"source_type,omitempty"` // "text", "image" or absent
	ImageURL   *string     `json:"image_url,omitempty"`
	Result     *RawVerdict `json:"result,omitempty"`
}

// RawVerdict is the verdict payload attached to a claim record.
type RawVerdict struct {
	Verdict     *string `json:"verdict,omitempty"`
	Confidence  any     `json:"confidence,omitempty"`  // json.Number, string or nil
	Explanation any     `json:"explanation,omitempty"` // string, object or nil
	Sources     []any   `json:"sources,omitempty"`
}

// UnmarshalJSON decodes a claim record leniently. A non-object entry decodes
// as a record without a result.
func (r *RawClaimResult) UnmarshalJSON(data []byte) error {
	*r = RawClaimResult{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	r.Claim = scalarText(fields["claim"])
	r.SourceType = scalarText(fields["source_type"])
	r.ImageURL = scalarText(fields["image_url"])

	if raw, ok := fields["result"]; ok && isObject(raw) {
		var v RawVerdict
		if err := json.Unmarshal(raw, &v); err == nil {
			r.Result = &v
		}
	}

	return nil
}

// UnmarshalJSON decodes a verdict payload leniently, keeping numbers as json.Number.
func (v *RawVerdict) UnmarshalJSON(data []byte) error {
	*v = RawVerdict{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	v.Verdict = scalarText(fields["verdict"])
	v.Confidence = decodeLoose(fields["confidence"])
	v.Explanation = decodeLoose(fields["explanation"])

	switch sources := decodeLoose(fields["sources"]).(type) {
	case []any:
		v.Sources = sources
	case string:
		// A lone string is accepted as a one-entry list
		v.Sources = []any{sources}
	}

	return nil
}

// decodeLoose decodes arbitrary JSON with json.Number for numbers.
// Returns nil for absent, null or undecodable values.
func decodeLoose(raw json.RawMessage) any {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

// scalarText returns the text form of a JSON string, number or boolean.
func scalarText(raw json.RawMessage) *string {
	switch val := decodeLoose(raw).(type) {
	case string:
		return &val
	case json.Number:
		s := val.String()
		return &s
	case bool:
		s := strconv.FormatBool(val)
		return &s
	default:
		return nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// OriginKind tells whether a claim came from submitted text or from an analyzed image
type OriginKind string

const (
	OriginText  OriginKind = "text"
	OriginImage OriginKind = "image"
)

// VerdictCategory is the coarse verdict classification that drives styling
type VerdictCategory string

const (
	VerdictTrue    VerdictCategory = "true"
	VerdictFalse   VerdictCategory = "false"
	VerdictPartial VerdictCategory = "partial"
	VerdictUnknown VerdictCategory = "unknown"
)

// Recovery records which normalization path produced a claim
type Recovery string

const (
	RecoveryNone       Recovery = "none"       // explanation used as received
	RecoveryStructured Recovery = "structured" // embedded JSON decoded
	RecoveryTextual    Recovery = "textual"    // embedded JSON cleaned up as text
	RecoveryInvalid    Recovery = "invalid"    // result missing, defaults substituted
)

// SourceRef is a citation derived from one raw source string
type SourceRef struct {
	RawValue     string `json:"raw_value"`
	DisplayLabel string `json:"display_label"`
	IsLink       bool   `json:"is_link"`
}

// NormalizedClaim is the display-ready form of a claim record.
// Built once by the normalizer and never modified afterwards.
type NormalizedClaim struct {
	ClaimText         string          `json:"claim_text"`
	OriginKind        OriginKind      `json:"origin_kind"`
	ImageRef          *string         `json:"image_ref,omitempty"`
	VerdictCategory   VerdictCategory `json:"verdict_category"`
	VerdictLabel      string          `json:"verdict_label"`
	ConfidencePercent *float64        `json:"confidence_percent"`
	ExplanationText   string          `json:"explanation_text"`
	Sources           []SourceRef     `json:"sources"`
	Recovery          Recovery        `json:"recovery"`
}

// ConfidenceDisplay formats the confidence for display ("85%" or "N/A")
func (c NormalizedClaim) ConfidenceDisplay() string {
	if c.ConfidencePercent == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*c.ConfidencePercent, 'f', -1, 64) + "%"
}

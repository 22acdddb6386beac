package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ResponseEnvelope is the top-level response for one submission.
// It is consumed once by the pipeline and then discarded.
type ResponseEnvelope struct {
	SourceURL       string           `json:"source_url,omitempty"`
	SourceTitle     string           `json:"source_title,omitempty"`
	Platform        string           `json:"platform,omitempty"`
	ImagesProcessed int              `json:"images_processed"`
	Claims          []RawClaimResult `json:"fact_check_results"`

	OriginalText          string  `json:"original_text,omitempty"`
	ClaimsFound           int     `json:"claims_found"`
	Timestamp             float64 `json:"timestamp,omitempty"`
	ImageDetectionMessage string  `json:"image_detection_message,omitempty"`

	// Error is set when the service answered with an error-shaped body
	Error string `json:"error,omitempty"`
}

// UnmarshalJSON decodes the envelope without failing on loosely typed metadata.
// Counters may arrive as floats or strings; images_detected stands in for
// images_processed on older service versions.
func (e *ResponseEnvelope) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = ResponseEnvelope{
		SourceURL:             textOrEmpty(fields["source_url"]),
		SourceTitle:           textOrEmpty(fields["source_title"]),
		Platform:              textOrEmpty(fields["platform"]),
		OriginalText:          textOrEmpty(fields["original_text"]),
		ImageDetectionMessage: textOrEmpty(fields["image_detection_message"]),
		Error:                 textOrEmpty(fields["error"]),
		ClaimsFound:           intOrZero(fields["claims_found"]),
	}

	if raw, ok := fields["images_processed"]; ok && !isNull(raw) {
		e.ImagesProcessed = intOrZero(raw)
	} else {
		e.ImagesProcessed = intOrZero(fields["images_detected"])
	}

	if n, ok := decodeLoose(fields["timestamp"]).(json.Number); ok {
		e.Timestamp, _ = n.Float64()
	}

	if raw, ok := fields["fact_check_results"]; ok {
		var claims []RawClaimResult
		if err := json.Unmarshal(raw, &claims); err == nil {
			e.Claims = claims
		}
	}

	return nil
}

func textOrEmpty(raw json.RawMessage) string {
	if s := scalarText(raw); s != nil {
		return strings.TrimSpace(*s)
	}
	return ""
}

func intOrZero(raw json.RawMessage) int {
	s := scalarText(raw)
	if s == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}

// RequestKind identifies the outbound payload shape
type RequestKind string

const (
	RequestText  RequestKind = "text"
	RequestURL   RequestKind = "url"
	RequestImage RequestKind = "image"
)

// Request is the outbound payload. Exactly one field is set.
type Request struct {
	Text         string `json:"text,omitempty"`
	URL          string `json:"url,omitempty"`
	ImageDataURL string `json:"image_data_url,omitempty"`
}

// Kind reports which payload shape the request carries
func (r Request) Kind() RequestKind {
	switch {
	case r.ImageDataURL != "":
		return RequestImage
	case r.URL != "":
		return RequestURL
	default:
		return RequestText
	}
}

package web

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errBadDataURL = errors.New("image_data_url must be a base64 data URL")

// decodeDataURL returns the bytes of a base64 data URL
func decodeDataURL(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, errBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errBadDataURL
	}
	return data, nil
}

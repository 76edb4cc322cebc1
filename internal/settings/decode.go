package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
)

var errNoPayload = errors.New("response carries no usable payload")

// envelopeMembers are skipped when an unwrapped reply is read as settings.
var envelopeMembers = map[string]bool{"success": true, "message": true, "error": true}

func payload(resp *apiclient.Response) json.RawMessage {
	if len(resp.Data) > 0 && !bytes.Equal(resp.Data, []byte("null")) {
		return resp.Data
	}
	return resp.Raw
}

// decodeSettings accepts a key/value object or a list of {key, value} rows.
func decodeSettings(raw json.RawMessage) (domain.SiteSettings, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errNoPayload
	}

	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		if nested, ok := obj["settings"]; ok && len(obj) == 1 {
			return decodeSettings(nested)
		}
		out := make(domain.SiteSettings, len(obj))
		for k, v := range obj {
			if envelopeMembers[k] {
				continue
			}
			out[k] = scalar(v)
		}
		return out, nil
	case '[':
		var rows []struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		out := make(domain.SiteSettings, len(rows))
		for _, row := range rows {
			if row.Key == "" {
				continue
			}
			out[row.Key] = scalar(row.Value)
		}
		return out, nil
	default:
		return nil, errNoPayload
	}
}

// decodeSettingValue reads GET /settings/:key, which may answer with a bare
// value or a {key, value} row.
func decodeSettingValue(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '{' {
		var row struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &row); err != nil || len(row.Value) == 0 {
			return "", false
		}
		return scalar(row.Value), true
	}
	return scalar(raw), true
}

// scalar renders a JSON value as the string a form field would hold.
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// decodeList accepts a bare array or an object wrapping it under one of keys.
func decodeList[T any](raw json.RawMessage, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errNoPayload
	}
	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		for _, k := range keys {
			if inner, ok := obj[k]; ok {
				return decodeList[T](inner)
			}
		}
		return nil, errNoPayload
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

var urlFields = []string{"file_url", "image_url", "url", "value"}

// uploadURL finds the stored file location in an upload reply. Top-level
// fields win over the same fields nested under data.
func uploadURL(raw []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	if u := firstString(obj); u != "" {
		return u
	}
	data, ok := obj["data"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(data, &nested); err != nil {
		return ""
	}
	return firstString(nested)
}

func firstString(obj map[string]json.RawMessage) string {
	for _, k := range urlFields {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

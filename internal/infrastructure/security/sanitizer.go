package security

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

const redactedValue = "[REDACTED]"

// Headers that never reach logs or the audit table.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
}

// Credential-like keys, matched as substrings of JSON keys and query params.
var secretFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"authorization",
	"private_key",
	"credential",
}

// Customer data carried by service records. Matched as whole keys so that
// "client" objects keep their shape and only the values are masked.
var personalFields = map[string]bool{
	"phone":          true,
	"mobile":         true,
	"email":          true,
	"address":        true,
	"client_phone":   true,
	"client_email":   true,
	"client_address": true,
	"customer_phone": true,
	"customer_email": true,
	"customerphone":  true,
	"customeremail":  true,
	"clientphone":    true,
	"clientemail":    true,
	"clientaddress":  true,
	"gstin":          true,
	"vin":            true,
	"chassis_number": true,
	"chassisnumber":  true,
}

// SanitizeHeaders flattens a header map, redacting credentials.
func SanitizeHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			out[key] = redactedValue
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// SanitizeBody turns a request or response body into JSON fit for logs:
// credentials and customer contact data are redacted, binary payloads such
// as logos are summarized, and oversized text is truncated.
func SanitizeBody(body []byte, maxSize int) json.RawMessage {
	if len(body) == 0 {
		return nil
	}

	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		inflated, err := gunzip(body)
		if err != nil {
			return describeBinary(body, "gzip")
		}
		body = inflated
	}

	if !utf8.Valid(body) {
		return describeBinary(body, http.DetectContentType(body))
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return marshal(map[string]any{"_format": "text", "_raw": truncate(string(body), maxSize)})
	}

	result := marshal(sanitizeValue(data))
	if maxSize > 0 && len(result) > maxSize {
		return marshal(map[string]any{
			"_truncated": true,
			"_size":      len(result),
			"_preview":   string(result[:maxSize]),
		})
	}
	return result
}

// SanitizeURL redacts credential query parameters.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	changed := false
	for key := range q {
		if isSecret(key) {
			q.Set(key, redactedValue)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isSecret(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range secretFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func isPersonal(key string) bool {
	return personalFields[strings.ToLower(key)]
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, value := range val {
			if isSecret(key) || isPersonal(key) {
				out[key] = redactedValue
				continue
			}
			out[key] = sanitizeValue(value)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, value := range val {
			out[i] = sanitizeValue(value)
		}
		return out
	default:
		return val
	}
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func describeBinary(data []byte, format string) json.RawMessage {
	return marshal(map[string]any{"_binary": true, "_format": format, "_size": len(data)})
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize]
	}
	return s
}

func marshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{"_format":"unserializable"}`)
	}
	return b
}

package masking

import "strings"

const maskToken = "****"

// sensitiveKeys lists metadata keys whose values are redacted before an
// audit entry is stored.
var sensitiveKeys = map[string]bool{
	"cnic":     true,
	"password": true,
	"email":    true,
}

// MaskCNIC redacts a CNIC card number, keeping the last four digits so an
// admin can still correlate an entry with a user record.
func MaskCNIC(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	digits := 0
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	keepFrom := digits - 4
	seen := 0
	var b strings.Builder
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			b.WriteRune(r)
			continue
		}
		if seen < keepFrom {
			b.WriteRune('*')
		} else {
			b.WriteRune(r)
		}
		seen++
	}
	return b.String()
}

// MaskSecret redacts a value entirely, keeping a short suffix.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// Sanitize returns a copy of the metadata with sensitive values masked.
// Nested maps and slices are walked.
func Sanitize(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		masked[trimmedKey] = sanitizeValue(trimmedKey, value)
	}

	if len(masked) == 0 {
		return nil
	}
	return masked
}

func sanitizeValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if !sensitiveKeys[strings.ToLower(key)] {
			return cast
		}
		if strings.ToLower(key) == "cnic" {
			return MaskCNIC(cast)
		}
		return MaskSecret(cast)
	case map[string]any:
		return Sanitize(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, sanitizeValue(key, item))
		}
		return out
	default:
		return value
	}
}

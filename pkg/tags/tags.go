package tags

import (
	"encoding/json"
	"strings"
)

// ImageSeparator joins image lists; images may contain commas (URLs with
// query strings), so the persisted form uses a triple pipe.
const ImageSeparator = "|||"

// Split breaks a comma-delimited tag string into trimmed, non-empty tokens.
// A nil or blank input yields an empty list; decoding never fails.
func Split(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	return SplitWith(*raw, ",")
}

// SplitWith splits on the given separator, trimming and dropping empty parts.
func SplitWith(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Join encodes a tag list to the comma-delimited column form. Entries are
// trimmed and blanks dropped; an empty result collapses to nil.
func Join(values []string) *string {
	return joinWith(values, ",")
}

// JoinImages encodes an image list using the triple-pipe separator.
func JoinImages(values []string) *string {
	return joinWith(values, ImageSeparator)
}

func joinWith(values []string, sep string) *string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	joined := strings.Join(cleaned, sep)
	return &joined
}

// NormalizeColumn trims a raw column value, collapsing blanks to nil.
func NormalizeColumn(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NormalizeImages decodes a persisted image column, detecting whether the
// triple-pipe or legacy comma separator was used.
func NormalizeImages(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	sep := ","
	if strings.Contains(*raw, ImageSeparator) {
		sep = ImageSeparator
	}
	return SplitWith(*raw, sep)
}

// StringOrList accepts either a JSON array of strings or a single delimited
// string, as bulk import payloads carry both shapes.
type StringOrList struct {
	Values []string
	Raw    *string
	IsList bool
}

// UnmarshalJSON keeps whichever shape the caller sent.
func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		s.Values = list
		s.IsList = true
		s.Raw = nil
		return nil
	}
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Raw = raw
	s.Values = nil
	s.IsList = false
	return nil
}

// MarshalJSON renders the list form when present, otherwise the raw string.
func (s StringOrList) MarshalJSON() ([]byte, error) {
	if s.IsList {
		return json.Marshal(s.Values)
	}
	return json.Marshal(s.Raw)
}

// Column encodes the value to the comma-delimited column form.
func (s StringOrList) Column() *string {
	if s.IsList {
		return Join(s.Values)
	}
	return NormalizeColumn(s.Raw)
}

// ImageColumn encodes the value to the triple-pipe column form.
func (s StringOrList) ImageColumn() *string {
	if s.IsList {
		return JoinImages(s.Values)
	}
	return NormalizeColumn(s.Raw)
}

// IsZero reports whether no value was provided at all.
func (s StringOrList) IsZero() bool {
	return !s.IsList && s.Raw == nil && s.Values == nil
}

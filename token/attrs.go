package token

import "strings"

// Attr is a single token attribute (key/value).
type Attr struct {
	K string
	V string
}

// GetAttr returns the value of the attribute with the given key, plus a
// flag telling whether it was present.
func GetAttr(attrs []Attr, key string) (string, bool) {
	for _, a := range attrs {
		if a.K == key {
			return a.V, true
		}
	}
	return "", false
}

// SetAttr replaces the value of an attribute, appending it if absent.
// It returns the updated attribute list.
func SetAttr(attrs []Attr, key, value string) []Attr {
	for i, a := range attrs {
		if a.K == key {
			attrs[i].V = value
			return attrs
		}
	}
	return append(attrs, Attr{K: key, V: value})
}

// RemoveAttr drops an attribute from the list.
func RemoveAttr(attrs []Attr, key string) []Attr {
	out := attrs[:0]
	for _, a := range attrs {
		if a.K != key {
			out = append(out, a)
		}
	}
	return out
}

// NormalizeOption normalizes an extension-tag or template option value:
// surrounding whitespace is trimmed and inner whitespace runs collapsed to
// a single blank.
func NormalizeOption(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

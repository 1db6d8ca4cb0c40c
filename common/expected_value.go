package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ExpectedKind tags the payload of an ExpectedValue.
type ExpectedKind int

const (
	// KindEquals expects exact equality with Literal.
	KindEquals ExpectedKind = iota
	// KindSubstring expects Literal to occur within the actual value.
	KindSubstring
	// KindRegex expects Pattern to match within the actual value.
	KindRegex
	// KindArrayEquals expects positional equality with Items.
	KindArrayEquals
	// KindArraySubstring expects each of Items to occur, positionally.
	KindArraySubstring
	// KindArrayRegex expects each of Items to match, positionally.
	KindArrayRegex
	// KindNumber expects numeric equality with Number.
	KindNumber
	// KindProperty expects deep structural equality with Value,
	// performed remotely.
	KindProperty
	// KindBooleanTrue expects the state predicate itself to hold; it
	// carries no payload.
	KindBooleanTrue
)

func (k ExpectedKind) String() string {
	switch k {
	case KindEquals:
		return "equals"
	case KindSubstring:
		return "substring"
	case KindRegex:
		return "regex"
	case KindArrayEquals:
		return "array.equals"
	case KindArraySubstring:
		return "array.substring"
	case KindArrayRegex:
		return "array.regex"
	case KindNumber:
		return "number"
	case KindProperty:
		return "property"
	case KindBooleanTrue:
		return "boolean"
	}
	return "unknown"
}

// ExpectedValue is an immutable descriptor of a single expected
// condition. Exactly one payload field is populated, selected by Kind.
// Array kinds hold leaf values in Items and never nest further arrays.
type ExpectedValue struct {
	Kind    ExpectedKind
	Literal string
	Pattern *regexp.Regexp
	// MatchSubstring selects substring instead of full comparison for
	// text payloads.
	MatchSubstring bool
	// NormalizeWhiteSpace collapses whitespace runs on both sides
	// before comparing.
	NormalizeWhiteSpace bool
	Items               []*ExpectedValue
	Number              float64
	Value               json.RawMessage
}

// textFamily carries the comparison defaults of an operator family.
type textFamily struct {
	matchSubstring      bool
	normalizeWhiteSpace bool
	// regexForcesSubstring preserves the text-family behavior where a
	// pattern match never reduces to byte equality, so a regex expected
	// value is substring-style even when the family default is not.
	regexForcesSubstring bool
}

var (
	// "to have text": exact, whitespace-normalized.
	hasTextFamily = textFamily{normalizeWhiteSpace: true, regexForcesSubstring: true}
	// "to contain text": substring, whitespace-normalized.
	containsTextFamily = textFamily{matchSubstring: true, normalizeWhiteSpace: true, regexForcesSubstring: true}
	// attribute, class, CSS, id and value comparisons: exact, raw.
	plainTextFamily = textFamily{}
)

func expectedString(s string, fam textFamily) *ExpectedValue {
	kind := KindEquals
	if fam.matchSubstring {
		kind = KindSubstring
	}
	return &ExpectedValue{
		Kind:                kind,
		Literal:             s,
		MatchSubstring:      fam.matchSubstring,
		NormalizeWhiteSpace: fam.normalizeWhiteSpace,
	}
}

func expectedPattern(p *regexp.Regexp, fam textFamily) *ExpectedValue {
	return &ExpectedValue{
		Kind:                KindRegex,
		Pattern:             p,
		MatchSubstring:      fam.matchSubstring || fam.regexForcesSubstring,
		NormalizeWhiteSpace: fam.normalizeWhiteSpace,
	}
}

func expectedNumber(n float64) *ExpectedValue {
	return &ExpectedValue{Kind: KindNumber, Number: n}
}

func expectedBooleanTrue() *ExpectedValue {
	return &ExpectedValue{Kind: KindBooleanTrue}
}

// expectedProperty serializes the caller value for a remote deep
// equality comparison. The comparison itself happens on the remote side.
func expectedProperty(value any) (*ExpectedValue, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot serialize %T: %v", ErrInvalidExpectation, value, err)
	}
	return &ExpectedValue{Kind: KindProperty, Value: raw}, nil
}

// buildExpectedScalar normalizes a caller-supplied scalar into a
// descriptor. It accepts a string or a *regexp.Regexp.
func buildExpectedScalar(value any, fam textFamily) (*ExpectedValue, error) {
	switch v := value.(type) {
	case string:
		return expectedString(v, fam), nil
	case *regexp.Regexp:
		if v == nil {
			return nil, fmt.Errorf("%w: nil pattern", ErrInvalidExpectation)
		}
		return expectedPattern(v, fam), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidExpectation, value)
	}
}

// buildExpectedText normalizes a caller-supplied value into a descriptor.
// On top of the scalars buildExpectedScalar accepts, it allows []string,
// []*regexp.Regexp, and a []any mixing strings and patterns. Order of
// array elements is significant: they are compared positionally.
func buildExpectedText(value any, fam textFamily) (*ExpectedValue, error) {
	switch v := value.(type) {
	case []string:
		items := make([]*ExpectedValue, len(v))
		for i, s := range v {
			items[i] = expectedString(s, fam)
		}
		return arrayOf(items, fam), nil
	case []*regexp.Regexp:
		items := make([]*ExpectedValue, len(v))
		for i, p := range v {
			if p == nil {
				return nil, fmt.Errorf("%w: nil pattern at index %d", ErrInvalidExpectation, i)
			}
			items[i] = expectedPattern(p, fam)
		}
		return arrayOf(items, fam), nil
	case []any:
		items := make([]*ExpectedValue, len(v))
		for i, el := range v {
			item, err := buildExpectedScalar(el, fam)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			items[i] = item
		}
		return arrayOf(items, fam), nil
	default:
		return buildExpectedScalar(value, fam)
	}
}

func arrayOf(items []*ExpectedValue, fam textFamily) *ExpectedValue {
	kind := KindArrayEquals
	switch {
	case fam.matchSubstring:
		kind = KindArraySubstring
	case anyPattern(items):
		kind = KindArrayRegex
	}
	return &ExpectedValue{Kind: kind, Items: items}
}

func anyPattern(items []*ExpectedValue) bool {
	for _, it := range items {
		if it.Kind == KindRegex {
			return true
		}
	}
	return false
}

// isArray returns true for the array-shaped kinds.
func (v *ExpectedValue) isArray() bool {
	switch v.Kind {
	case KindArrayEquals, KindArraySubstring, KindArrayRegex:
		return true
	}
	return false
}

// entries flattens the descriptor into the per-attempt request form: the
// items for arrays, the value itself otherwise.
func (v *ExpectedValue) entries() []*ExpectedValue {
	if v.isArray() {
		return v.Items
	}
	return []*ExpectedValue{v}
}

// hasPattern returns true if the value, or any array item, is a regex.
func (v *ExpectedValue) hasPattern() bool {
	if v.Kind == KindRegex {
		return true
	}
	return anyPattern(v.Items)
}

// String renders the expected value for failure messages.
func (v *ExpectedValue) String() string {
	switch v.Kind {
	case KindEquals, KindSubstring:
		return strconv.Quote(v.Literal)
	case KindRegex:
		return "/" + v.Pattern.String() + "/"
	case KindArrayEquals, KindArraySubstring, KindArrayRegex:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindProperty:
		return string(v.Value)
	case KindBooleanTrue:
		return ""
	}
	return ""
}

// expectedTextValue is the wire form of a leaf expected value. The field
// names match the expectation protocol used by existing tooling.
type expectedTextValue struct {
	String              *string `json:"string,omitempty"`
	RegexSource         *string `json:"regexSource,omitempty"`
	MatchSubstring      bool    `json:"matchSubstring"`
	NormalizeWhiteSpace bool    `json:"normalizeWhiteSpace"`
}

// MarshalJSON encodes the descriptor in the expectation protocol form.
// Go patterns carry their flags inline in the source (e.g. "(?i)"), so no
// separate flags field is emitted.
func (v *ExpectedValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindArrayEquals, KindArraySubstring, KindArrayRegex:
		return json.Marshal(v.Items)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindProperty:
		return v.Value, nil
	case KindBooleanTrue:
		return json.Marshal(true)
	case KindEquals, KindSubstring:
		s := v.Literal
		return json.Marshal(expectedTextValue{
			String:              &s,
			MatchSubstring:      v.MatchSubstring,
			NormalizeWhiteSpace: v.NormalizeWhiteSpace,
		})
	case KindRegex:
		src := v.Pattern.String()
		return json.Marshal(expectedTextValue{
			RegexSource:         &src,
			MatchSubstring:      v.MatchSubstring,
			NormalizeWhiteSpace: v.NormalizeWhiteSpace,
		})
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidExpectation, v.Kind)
}

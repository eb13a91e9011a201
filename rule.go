package feedgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Scalar is a feed field given either as a locator into the index page or
// as a literal value. In oracle output a bare JSON string is a literal and
// {"locator": "..."} names the element whose text is the value.
type Scalar struct {
	Locator string `json:"locator,omitempty"`
	Value   string `json:"value,omitempty"`
}

// UnmarshalJSON accepts a string literal or an object with exactly one of
// locator or value.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		*s = Scalar{Value: literal}
		return nil
	}

	type scalar Scalar
	var v scalar
	if err := json.Unmarshal(data, &v); err != nil {
		return Errorf(ESCHEMA, "rule scalar must be a string or an object with locator or value")
	}
	*s = Scalar(v)
	return nil
}

// FeedStructureRule describes how to read a feed index page.
//
// Title, Author and Description are optional scalars; the oracle is told to
// invent a title and description when the page has none. PostListLocator
// and PostLinkAttribute are required.
type FeedStructureRule struct {
	Title             *Scalar `json:"title"`
	Author            *Scalar `json:"author"`
	Description       *Scalar `json:"description"`
	PostListLocator   string  `json:"postListLocator"`
	PostLinkAttribute string  `json:"postLinkAttribute"`
	NextPageLocator   *string `json:"nextPageLocator"`
}

// Validate returns an error if a required field is missing.
// Blank optional fields are normalized to nil.
func (r *FeedStructureRule) Validate() error {
	r.PostListLocator = strings.TrimSpace(r.PostListLocator)
	r.PostLinkAttribute = strings.TrimSpace(r.PostLinkAttribute)
	if r.PostListLocator == "" {
		return Errorf(ESCHEMA, "feed rule postListLocator required")
	}
	if r.PostLinkAttribute == "" {
		return Errorf(ESCHEMA, "feed rule postLinkAttribute required")
	}
	if strings.ContainsAny(r.PostLinkAttribute, " \t\r\n\"'<>=/") {
		return Errorf(ESCHEMA, "feed rule postLinkAttribute %q is not an attribute name", r.PostLinkAttribute)
	}
	for name, field := range map[string]**Scalar{"title": &r.Title, "author": &r.Author, "description": &r.Description} {
		scalar, err := normalizeScalar(name, *field)
		if err != nil {
			return err
		}
		*field = scalar
	}
	r.NextPageLocator = nilIfBlank(r.NextPageLocator)
	return nil
}

// Locators returns the locators that must compile for the rule to be usable,
// including those of locator scalars.
func (r *FeedStructureRule) Locators() []string {
	locators := []string{r.PostListLocator}
	if r.NextPageLocator != nil {
		locators = append(locators, *r.NextPageLocator)
	}
	for _, s := range []*Scalar{r.Title, r.Author, r.Description} {
		if s != nil && s.Locator != "" {
			locators = append(locators, s.Locator)
		}
	}
	return locators
}

// PostStructureRule describes how to read a single post page.
// Both locators must resolve in the target document.
type PostStructureRule struct {
	TitleLocator   string `json:"title"`
	ContentLocator string `json:"content"`
}

// Validate returns an error if a required field is missing.
func (r *PostStructureRule) Validate() error {
	r.TitleLocator = strings.TrimSpace(r.TitleLocator)
	r.ContentLocator = strings.TrimSpace(r.ContentLocator)
	if r.TitleLocator == "" {
		return Errorf(ESCHEMA, "post rule title required")
	}
	if r.ContentLocator == "" {
		return Errorf(ESCHEMA, "post rule content required")
	}
	return nil
}

// Locators returns the locators that must compile for the rule to be usable.
func (r *PostStructureRule) Locators() []string {
	return []string{r.TitleLocator, r.ContentLocator}
}

// Rule is the closed set of structural rules the oracle can produce.
type Rule interface {
	FeedStructureRule | PostStructureRule
}

// ParseRule decodes raw oracle output into a validated rule.
//
// Decoding is strict: the text must be exactly one JSON object with the
// expected field types. Answers wrapped in prose or code fences are rejected
// rather than scraped. Every failure is reported as ESCHEMA.
func ParseRule[T Rule](raw string) (*T, error) {
	var rule T

	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&rule); err != nil {
		var appErr *Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, Errorf(ESCHEMA, "rule field %q has wrong type: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return nil, Errorf(ESCHEMA, "rule is not valid JSON: %v", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}

	v, ok := any(&rule).(interface{ Validate() error })
	if !ok {
		return nil, Errorf(EINTERNAL, "rule type %T has no validation", rule)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &rule, nil
}

// expectEOF rejects trailing content after the decoded JSON value.
func expectEOF(dec *json.Decoder) error {
	rest, err := io.ReadAll(dec.Buffered())
	if err != nil {
		return Errorf(ESCHEMA, "rule is not valid JSON: %v", err)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return Errorf(ESCHEMA, "rule has trailing data after JSON object")
	}
	return nil
}

// normalizeScalar trims s and returns nil when it is blank.
func normalizeScalar(name string, s *Scalar) (*Scalar, error) {
	if s == nil {
		return nil, nil
	}
	out := Scalar{Locator: strings.TrimSpace(s.Locator), Value: strings.TrimSpace(s.Value)}
	switch {
	case out.Locator != "" && out.Value != "":
		return nil, Errorf(ESCHEMA, "feed rule %s has both locator and value", name)
	case out.Locator == "" && out.Value == "":
		return nil, nil
	}
	return &out, nil
}

func nilIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

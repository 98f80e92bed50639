package book

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// unknownField builds the error for a mapping key that is not part of the
// schema. Unknown fields are always rejected so that typos in a description
// surface immediately.
func unknownField(key *yaml.Node, known ...string) error {
	return fmt.Errorf("line %d: unknown field %q (expected one of: %s)", key.Line, key.Value, strings.Join(known, ", "))
}

func missingField(node *yaml.Node, name string) error {
	return fmt.Errorf("line %d: missing required field %q", node.Line, name)
}

func wantKind(node *yaml.Node, want string) error {
	return fmt.Errorf("line %d: expected %s", node.Line, want)
}

// decodeString decodes a scalar node into a non-empty string.
func decodeString(node *yaml.Node, field string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", wantKind(node, fmt.Sprintf("a string for %q", field))
	}
	if node.Value == "" {
		return "", fmt.Errorf("line %d: %q must not be empty", node.Line, field)
	}
	return node.Value, nil
}

// decodeSome decodes a node that may hold either a single T or a sequence of
// T, preserving declaration order. This is the canonicalization point for the
// shape-polymorphic description fields.
func decodeSome[T any](node *yaml.Node) ([]T, error) {
	if node.Kind == yaml.SequenceNode {
		out := make([]T, 0, len(node.Content))
		for _, n := range node.Content {
			var v T
			if err := n.Decode(&v); err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return []T{v}, nil
}

func (b *Book) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	var sawMetadata, sawChapter bool
	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "metadata":
			sawMetadata = true
			if err := val.Decode(&b.Metadata); err != nil {
				return err
			}
		case "rendition":
			if err := val.Decode(&b.Rendition); err != nil {
				return err
			}
		case "chapter":
			sawChapter = true
			chapters, err := decodeSome[Chapter](val)
			if err != nil {
				return err
			}
			if len(chapters) == 0 {
				return fmt.Errorf(`line %d: "chapter" must contain at least one chapter`, val.Line)
			}
			b.Chapters = chapters
		default:
			return unknownField(key, "metadata", "rendition", "chapter")
		}
	}

	if !sawMetadata {
		return missingField(value, "metadata")
	}
	if !sawChapter {
		return missingField(value, "chapter")
	}
	return nil
}

func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	var sawTitle, sawLanguage bool
	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "title":
			sawTitle = true
			titles, err := decodeSome[Title](val)
			if err != nil {
				return err
			}
			if len(titles) == 0 {
				return fmt.Errorf(`line %d: "title" must contain at least one title`, val.Line)
			}
			m.Titles = titles
		case "creator":
			creators, err := decodeSome[Creator](val)
			if err != nil {
				return err
			}
			m.Creators = creators
		case "contributor":
			contributors, err := decodeSome[Creator](val)
			if err != nil {
				return err
			}
			m.Contributors = contributors
		case "collection":
			collections, err := decodeSome[Collection](val)
			if err != nil {
				return err
			}
			m.Collections = collections
		case "language":
			sawLanguage = true
			s, err := decodeString(val, "language")
			if err != nil {
				return err
			}
			m.Language = s
		case "identifier":
			// Missing or empty identifiers are tolerated here; Normalize
			// synthesizes one before the build.
			if val.Kind != yaml.ScalarNode {
				return wantKind(val, `a string for "identifier"`)
			}
			m.Identifier = val.Value
		default:
			return unknownField(key, "title", "creator", "contributor", "collection", "language", "identifier")
		}
	}

	if !sawTitle {
		return missingField(value, "title")
	}
	if !sawLanguage {
		return missingField(value, "language")
	}
	return nil
}

func (t *Title) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s, err := decodeString(value, "title")
		if err != nil {
			return err
		}
		*t = Title{Name: s, Type: TitleMain}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping or a string")
	}

	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "name":
			s, err := decodeString(val, "name")
			if err != nil {
				return err
			}
			t.Name = s
		case "type":
			if err := val.Decode(&t.Type); err != nil {
				return err
			}
		case "alternateScript":
			t.AlternateScript = val.Value
		case "fileAs":
			t.FileAs = val.Value
		default:
			return unknownField(key, "name", "type", "alternateScript", "fileAs")
		}
	}

	if t.Name == "" {
		return missingField(value, "name")
	}
	if t.Type == "" {
		t.Type = TitleMain
	}
	return nil
}

func (c *Creator) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s, err := decodeString(value, "name")
		if err != nil {
			return err
		}
		*c = Creator{Name: s}
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping or a string")
	}

	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "name":
			s, err := decodeString(val, "name")
			if err != nil {
				return err
			}
			c.Name = s
		case "role":
			c.Role = val.Value
		case "alternateScript":
			c.AlternateScript = val.Value
		case "fileAs":
			c.FileAs = val.Value
		default:
			return unknownField(key, "name", "role", "alternateScript", "fileAs")
		}
	}

	if c.Name == "" {
		return missingField(value, "name")
	}
	return nil
}

func (c *Collection) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	var sawType bool
	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "name":
			s, err := decodeString(val, "name")
			if err != nil {
				return err
			}
			c.Name = s
		case "type":
			sawType = true
			if err := val.Decode(&c.Type); err != nil {
				return err
			}
		case "position":
			n, err := strconv.Atoi(val.Value)
			if err != nil || n < 0 {
				return fmt.Errorf(`line %d: "position" must be a non-negative integer`, val.Line)
			}
			c.Position = &n
		default:
			return unknownField(key, "name", "type", "position")
		}
	}

	if c.Name == "" {
		return missingField(value, "name")
	}
	if !sawType {
		return missingField(value, "type")
	}
	return nil
}

func (r *Rendition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "direction":
			if err := val.Decode(&r.Direction); err != nil {
				return err
			}
		case "layout":
			if err := val.Decode(&r.Layout); err != nil {
				return err
			}
		case "orientation":
			if err := val.Decode(&r.Orientation); err != nil {
				return err
			}
		case "spread":
			if err := val.Decode(&r.Spread); err != nil {
				return err
			}
		case "style":
			styles, err := decodeSome[Style](val)
			if err != nil {
				return err
			}
			r.Styles = styles
		default:
			return unknownField(key, "direction", "layout", "orientation", "spread", "style")
		}
	}
	return nil
}

func (s *Style) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "link":
			if err := val.Decode(&s.Link); err != nil {
				return err
			}
		case "href":
			v, err := decodeString(val, "href")
			if err != nil {
				return err
			}
			s.Href = v
		case "src":
			v, err := decodeString(val, "src")
			if err != nil {
				return err
			}
			s.Src = v
		default:
			return unknownField(key, "link", "href", "src")
		}
	}

	if s.Href == "" {
		return missingField(value, "href")
	}
	if s.Src == "" {
		return missingField(value, "src")
	}
	return nil
}

func (c *Chapter) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return wantKind(value, "a mapping")
	}

	var sawPage bool
	for i := 0; i < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "name":
			c.Name = val.Value
		case "page":
			sawPage = true
			pages, err := decodeSome[Page](val)
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				return fmt.Errorf(`line %d: "page" must contain at least one page`, val.Line)
			}
			c.Pages = pages
		case "cover":
			if err := val.Decode(&c.Cover); err != nil {
				return err
			}
		default:
			return unknownField(key, "name", "page", "cover")
		}
	}

	if !sawPage {
		return missingField(value, "page")
	}
	return nil
}

func (p *Page) UnmarshalYAML(value *yaml.Node) error {
	s, err := decodeString(value, "page")
	if err != nil {
		return err
	}
	p.Src = s
	return nil
}

// enumError reports an unknown enum value together with the accepted set.
func enumError(node *yaml.Node, field string, known ...string) error {
	return fmt.Errorf("line %d: unknown %s %q (expected one of: %s)", node.Line, field, node.Value, strings.Join(known, ", "))
}

func (t *TitleType) UnmarshalYAML(value *yaml.Node) error {
	switch v := TitleType(value.Value); v {
	case TitleMain, TitleSubtitle, TitleShort, TitleCollection, TitleEdition, TitleExpanded:
		*t = v
		return nil
	}
	return enumError(value, "title type", "main", "subtitle", "short", "collection", "edition", "expanded")
}

func (c *CollectionType) UnmarshalYAML(value *yaml.Node) error {
	switch v := CollectionType(value.Value); v {
	case CollectionSeries, CollectionSet:
		*c = v
		return nil
	}
	return enumError(value, "collection type", "series", "set")
}

func (d *Direction) UnmarshalYAML(value *yaml.Node) error {
	switch v := Direction(value.Value); v {
	case DirectionRTL, DirectionLTR:
		*d = v
		return nil
	}
	return enumError(value, "direction", "rtl", "ltr")
}

func (l *Layout) UnmarshalYAML(value *yaml.Node) error {
	switch v := Layout(value.Value); v {
	case LayoutReflowable, LayoutPrePaginated:
		*l = v
		return nil
	}
	return enumError(value, "layout", "reflowable", "pre-paginated")
}

func (o *Orientation) UnmarshalYAML(value *yaml.Node) error {
	switch v := Orientation(value.Value); v {
	case OrientationLandscape, OrientationPortrait, OrientationAuto:
		*o = v
		return nil
	}
	return enumError(value, "orientation", "landscape", "portrait", "auto")
}

func (s *Spread) UnmarshalYAML(value *yaml.Node) error {
	switch v := Spread(value.Value); v {
	case SpreadNone, SpreadLandscape, SpreadBoth, SpreadAuto:
		*s = v
		return nil
	}
	return enumError(value, "spread", "none", "landscape", "both", "auto")
}

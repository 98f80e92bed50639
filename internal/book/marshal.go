package book

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Marshalling mirrors the decode shapes: a list with a single entry collapses
// back to that entry, and a structured entry carrying nothing but a name
// collapses back to a bare string. Defaults are omitted, so a freshly decoded
// description round-trips to its most compact form.

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode}
}

func addEntry(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}

// someNode collapses a single-element node list back to its element.
func someNode(nodes []*yaml.Node) *yaml.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &yaml.Node{Kind: yaml.SequenceNode, Content: nodes}
}

func (b Book) MarshalYAML() (any, error) {
	root := mappingNode()
	addEntry(root, "metadata", b.Metadata.node())
	if r := b.Rendition.node(); len(r.Content) > 0 {
		addEntry(root, "rendition", r)
	}
	chapters := make([]*yaml.Node, len(b.Chapters))
	for i, ch := range b.Chapters {
		chapters[i] = ch.node()
	}
	addEntry(root, "chapter", someNode(chapters))
	return root, nil
}

func (m Metadata) node() *yaml.Node {
	n := mappingNode()

	titles := make([]*yaml.Node, len(m.Titles))
	for i, t := range m.Titles {
		titles[i] = t.node()
	}
	addEntry(n, "title", someNode(titles))

	if len(m.Creators) > 0 {
		creators := make([]*yaml.Node, len(m.Creators))
		for i, c := range m.Creators {
			creators[i] = c.node()
		}
		addEntry(n, "creator", someNode(creators))
	}
	if len(m.Contributors) > 0 {
		contributors := make([]*yaml.Node, len(m.Contributors))
		for i, c := range m.Contributors {
			contributors[i] = c.node()
		}
		addEntry(n, "contributor", someNode(contributors))
	}
	if len(m.Collections) > 0 {
		collections := make([]*yaml.Node, len(m.Collections))
		for i, c := range m.Collections {
			collections[i] = c.node()
		}
		addEntry(n, "collection", someNode(collections))
	}

	addEntry(n, "language", strNode(m.Language))
	if m.Identifier != "" {
		addEntry(n, "identifier", strNode(m.Identifier))
	}
	return n
}

func (t Title) node() *yaml.Node {
	plain := (t.Type == "" || t.Type == TitleMain) && t.AlternateScript == "" && t.FileAs == ""
	if plain {
		return strNode(t.Name)
	}
	n := mappingNode()
	addEntry(n, "name", strNode(t.Name))
	if t.Type != "" && t.Type != TitleMain {
		addEntry(n, "type", strNode(string(t.Type)))
	}
	if t.AlternateScript != "" {
		addEntry(n, "alternateScript", strNode(t.AlternateScript))
	}
	if t.FileAs != "" {
		addEntry(n, "fileAs", strNode(t.FileAs))
	}
	return n
}

func (c Creator) node() *yaml.Node {
	if c.Role == "" && c.AlternateScript == "" && c.FileAs == "" {
		return strNode(c.Name)
	}
	n := mappingNode()
	addEntry(n, "name", strNode(c.Name))
	if c.Role != "" {
		addEntry(n, "role", strNode(c.Role))
	}
	if c.AlternateScript != "" {
		addEntry(n, "alternateScript", strNode(c.AlternateScript))
	}
	if c.FileAs != "" {
		addEntry(n, "fileAs", strNode(c.FileAs))
	}
	return n
}

func (c Collection) node() *yaml.Node {
	n := mappingNode()
	addEntry(n, "name", strNode(c.Name))
	addEntry(n, "type", strNode(string(c.Type)))
	if c.Position != nil {
		addEntry(n, "position", intNode(*c.Position))
	}
	return n
}

func (r Rendition) node() *yaml.Node {
	n := mappingNode()
	if r.Direction != "" && r.Direction != DirectionRTL {
		addEntry(n, "direction", strNode(string(r.Direction)))
	}
	if r.Layout != "" && r.Layout != LayoutPrePaginated {
		addEntry(n, "layout", strNode(string(r.Layout)))
	}
	if r.Orientation != "" && r.Orientation != OrientationAuto {
		addEntry(n, "orientation", strNode(string(r.Orientation)))
	}
	if r.Spread != "" && r.Spread != SpreadAuto {
		addEntry(n, "spread", strNode(string(r.Spread)))
	}
	if len(r.Styles) > 0 {
		styles := make([]*yaml.Node, len(r.Styles))
		for i, s := range r.Styles {
			styles[i] = s.node()
		}
		addEntry(n, "style", someNode(styles))
	}
	return n
}

func (s Style) node() *yaml.Node {
	n := mappingNode()
	if s.Link {
		addEntry(n, "link", boolNode(true))
	}
	addEntry(n, "href", strNode(s.Href))
	addEntry(n, "src", strNode(s.Src))
	return n
}

func (c Chapter) node() *yaml.Node {
	n := mappingNode()
	if c.Name != "" {
		addEntry(n, "name", strNode(c.Name))
	}
	pages := make([]*yaml.Node, len(c.Pages))
	for i, p := range c.Pages {
		pages[i] = strNode(p.Src)
	}
	addEntry(n, "page", someNode(pages))
	if c.Cover {
		addEntry(n, "cover", boolNode(true))
	}
	return n
}

package epub

import (
	"encoding/xml"
	"fmt"

	"github.com/orihon/orihon/internal/book"
)

// Write-side OPF structures. Prefixed element names are spelled out literally
// so the marshalled document carries the conventional dc: prefix instead of
// generated namespace aliases.

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Xmlns    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Lang     string      `xml:"xml:lang,attr"`
	Prefix   string      `xml:"prefix,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	XmlnsDC      string    `xml:"xmlns:dc,attr"`
	Titles       []opfText `xml:"dc:title"`
	Creators     []opfText `xml:"dc:creator"`
	Contributors []opfText `xml:"dc:contributor"`
	Language     string    `xml:"dc:language"`
	Identifier   opfText   `xml:"dc:identifier"`
	Metas        []opfMeta `xml:"meta"`
}

// opfText is a Dublin Core text element with an optional refinement anchor.
type opfText struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr,omitempty"`
}

type opfMeta struct {
	Value    string `xml:",chardata"`
	ID       string `xml:"id,attr,omitempty"`
	Refines  string `xml:"refines,attr,omitempty"`
	Property string `xml:"property,attr"`
	Scheme   string `xml:"scheme,attr,omitempty"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	MediaType  string `xml:"media-type,attr"`
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Direction string       `xml:"page-progression-direction,attr"`
	ItemRefs  []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	Linear     string `xml:"linear,attr"`
	IDRef      string `xml:"idref,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

// refineText appends a refined Dublin Core person element together with its
// refinement metas. seq is the element's 1-based display sequence.
func refineText(texts []opfText, metas []opfMeta, c book.Creator, anchor string, seq int) ([]opfText, []opfMeta) {
	texts = append(texts, opfText{Value: c.Name, ID: anchor})
	refines := "#" + anchor

	if c.Role != "" {
		metas = append(metas, opfMeta{Refines: refines, Property: "role", Scheme: "marc:relators", Value: c.Role})
	}
	if c.AlternateScript != "" {
		metas = append(metas, opfMeta{Refines: refines, Property: "alternate-script", Value: c.AlternateScript})
	}
	if c.FileAs != "" {
		metas = append(metas, opfMeta{Refines: refines, Property: "file-as", Value: c.FileAs})
	}
	metas = append(metas, opfMeta{Refines: refines, Property: "display-seq", Value: fmt.Sprint(seq)})
	return texts, metas
}

// packageDocument renders item/standard.opf.
func (p *Package) packageDocument() ([]byte, error) {
	md := p.Book.Metadata
	r := p.Book.Rendition

	var metas []opfMeta

	var titles []opfText
	for i, t := range md.Titles {
		anchor := fmt.Sprintf("title%d", i+1)
		refines := "#" + anchor
		titles = append(titles, opfText{Value: t.Name, ID: anchor})

		metas = append(metas, opfMeta{Refines: refines, Property: "title-type", Value: string(t.Type)})
		if t.AlternateScript != "" {
			metas = append(metas, opfMeta{Refines: refines, Property: "alternate-script", Value: t.AlternateScript})
		}
		if t.FileAs != "" {
			metas = append(metas, opfMeta{Refines: refines, Property: "file-as", Value: t.FileAs})
		}
		metas = append(metas, opfMeta{Refines: refines, Property: "display-seq", Value: fmt.Sprint(i + 1)})
	}

	var creators, contributors []opfText
	for i, c := range md.Creators {
		creators, metas = refineText(creators, metas, c, fmt.Sprintf("creator%d", i+1), i+1)
	}
	for i, c := range md.Contributors {
		contributors, metas = refineText(contributors, metas, c, fmt.Sprintf("contributor%d", i+1), i+1)
	}

	for i, c := range md.Collections {
		anchor := fmt.Sprintf("collection%d", i+1)
		refines := "#" + anchor
		metas = append(metas, opfMeta{ID: anchor, Property: "belongs-to-collection", Value: c.Name})
		metas = append(metas, opfMeta{Refines: refines, Property: "collection-type", Value: string(c.Type)})
		if c.Position != nil {
			metas = append(metas, opfMeta{Refines: refines, Property: "group-position", Value: fmt.Sprint(*c.Position)})
		}
	}

	metas = append(metas,
		opfMeta{Property: "dcterms:modified", Value: p.Modified.Format("2006-01-02T15:04:05Z")},
		opfMeta{Property: "rendition:layout", Value: string(r.Layout)},
		opfMeta{Property: "rendition:orientation", Value: string(r.Orientation)},
		opfMeta{Property: "rendition:spread", Value: string(r.Spread)},
		opfMeta{Property: "ebpaj:guide-version", Value: "1.1.3"},
	)

	manifest := opfManifest{Items: []opfItem{{
		MediaType:  "application/xhtml+xml",
		ID:         "toc",
		Href:       "navigation-documents.xhtml",
		Properties: "nav",
	}}}
	for _, item := range p.items {
		manifest.Items = append(manifest.Items, opfItem{
			MediaType:  item.MediaType,
			ID:         item.ID,
			Href:       item.Href,
			Properties: item.Properties,
		})
	}

	spine := opfSpine{Direction: string(r.Direction)}
	for _, ref := range p.spine {
		spine.ItemRefs = append(spine.ItemRefs, opfItemRef{
			Linear:     "yes",
			IDRef:      ref.IDRef,
			Properties: ref.Properties,
		})
	}

	pkg := opfPackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		Version:  "3.0",
		UniqueID: "unique-id",
		Lang:     md.Language,
		Prefix:   "ebpaj: http://www.ebpaj.jp/",
		Metadata: opfMetadata{
			XmlnsDC:      "http://purl.org/dc/elements/1.1/",
			Titles:       titles,
			Creators:     creators,
			Contributors: contributors,
			Language:     md.Language,
			Identifier:   opfText{Value: md.Identifier, ID: "unique-id"},
			Metas:        metas,
		},
		Manifest: manifest,
		Spine:    spine,
	}

	out, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

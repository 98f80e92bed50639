package epub

import (
	"fmt"
	"html"
	"strings"
)

const xhtmlProlog = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE html>\n"

// WrapperPage renders the fixed-layout content document for a single page
// image: a viewport sized to the probed dimensions and an SVG block that
// scales the image to the page. Hrefs are resolved relative to item/xhtml/.
func (p *Package) WrapperPage(width, height int, image *Item, cover bool) []byte {
	var b strings.Builder
	b.WriteString(xhtmlProlog)

	fmt.Fprintf(&b, "<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\" xml:lang=\"%s\">\n",
		html.EscapeString(p.Book.Metadata.Language))
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"UTF-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(p.Title))
	for _, style := range p.styles {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" type=\"%s\" href=\"../%s\"/>\n", style.MediaType, style.Href)
	}
	fmt.Fprintf(&b, "<meta name=\"viewport\" content=\"width=%d, height=%d\"/>\n", width, height)
	b.WriteString("</head>\n")

	if cover {
		b.WriteString("<body epub:type=\"cover\">\n")
	} else {
		b.WriteString("<body>\n")
	}
	b.WriteString("<div class=\"main\">\n")
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" version=\"1.1\" width=\"100%%\" height=\"100%%\" viewBox=\"0 0 %d %d\">\n",
		width, height)
	fmt.Fprintf(&b, "<image width=\"%d\" height=\"%d\" xlink:href=\"../%s\"/>\n", width, height, image.Href)
	b.WriteString("</svg>\n")
	b.WriteString("</div>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return []byte(b.String())
}

// navigationDocument renders item/navigation-documents.xhtml: a toc nav
// listing the named chapters. Entry hrefs are already relative to item/.
func (p *Package) navigationDocument() []byte {
	var b strings.Builder
	b.WriteString(xhtmlProlog)

	fmt.Fprintf(&b, "<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\" xml:lang=\"%s\">\n",
		html.EscapeString(p.Book.Metadata.Language))
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"UTF-8\"/>\n")
	b.WriteString("<title>Navigation</title>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("<nav epub:type=\"toc\" id=\"toc\">\n")
	b.WriteString("<h1>Navigation</h1>\n")
	b.WriteString("<ol>\n")
	for _, entry := range p.nav {
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", entry.Href, html.EscapeString(entry.Caption))
	}
	b.WriteString("</ol>\n")
	b.WriteString("</nav>\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>\n")

	return []byte(b.String())
}

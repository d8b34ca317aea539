package styles

import (
	"bytes"
	"encoding/xml"

	"github.com/matzehuels/forestplot/pkg/forest"
)

// EscapeXML escapes text for embedding in SVG content and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// TextAnchor maps a column alignment onto the SVG text-anchor keyword.
func TextAnchor(align string) string {
	switch align {
	case forest.AlignRight:
		return "end"
	case forest.AlignCenter:
		return "middle"
	default:
		return "start"
	}
}

// Dash returns the stroke-dasharray for an annotation line style, or ""
// for solid lines.
func Dash(style string) string {
	switch style {
	case forest.LineDashed:
		return "6 4"
	case forest.LineDotted:
		return "2 3"
	default:
		return ""
	}
}

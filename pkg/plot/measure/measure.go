// Package measure sizes text for the column width engine.
//
// Two interchangeable strategies implement [Measurer]. [Estimator]
// approximates widths from per-character classes scaled by font size
// and needs no font data; it is what the static renderer uses, so the
// widths baked into exported documents never depend on installed
// fonts. [FaceMeasurer] wraps a real OpenType face for shells that can
// load one (the theme's typography section may point at a font file).
// The two agree closely for ordinary label text; layouts are computed
// with exactly one of them per pass.
package measure

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/forestplot/pkg/errors"
)

// Measurer measures the rendered width of a single-line string in
// pixels at the given font size.
type Measurer interface {
	Width(text string, size float64, bold bool) float64
}

// boldWidthFactor widens bold text uniformly. Both strategies share it
// so switching measurers never reorders column widths.
const boldWidthFactor = 1.05

// =============================================================================
// Character-Class Estimator
// =============================================================================

// Per-class advance widths as fractions of the font size. Digits use a
// tabular width so numeric columns align.
const (
	widthSuperscript = 0.40
	widthNarrow      = 0.28
	widthMathOp      = 0.60
	widthWide        = 0.85
	widthDigit       = 0.60
	widthDefault     = 0.54
)

const (
	superscriptRunes = "⁰¹²³⁴⁵⁶⁷⁸⁹⁺⁻"
	narrowRunes      = " .,:;!'`|/\\()[]{}iIljtf"
	mathOpRunes      = "+-−×÷=<>±–"
	wideRunes        = "mwMW@%&★☆—"
)

// Estimator approximates text width from character classes. The zero
// value is ready to use.
type Estimator struct{}

// Width implements [Measurer].
func (Estimator) Width(text string, size float64, bold bool) float64 {
	total := 0.0
	for _, r := range text {
		total += runeClassWidth(r)
	}
	px := total * size
	if bold {
		px *= boldWidthFactor
	}
	return px
}

func runeClassWidth(r rune) float64 {
	switch {
	case strings.ContainsRune(superscriptRunes, r):
		return widthSuperscript
	case strings.ContainsRune(mathOpRunes, r):
		return widthMathOp
	case unicode.IsDigit(r):
		return widthDigit
	case strings.ContainsRune(narrowRunes, r):
		return widthNarrow
	case strings.ContainsRune(wideRunes, r):
		return widthWide
	default:
		return widthDefault
	}
}

// =============================================================================
// Font-Metric Measurement
// =============================================================================

// FaceMeasurer measures with real font metrics from a parsed OpenType
// font. Faces are cached per size. Bold is emulated with the shared
// width factor since a single font file carries one weight.
//
// FaceMeasurer is not safe for concurrent use; font.Face itself is not.
type FaceMeasurer struct {
	otf   *opentype.Font
	faces map[float64]font.Face
}

// LoadFace parses an OpenType/TrueType font file into a measurer.
func LoadFace(path string) (*FaceMeasurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read font file %s", path)
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse font file %s", path)
	}
	return &FaceMeasurer{otf: otf, faces: make(map[float64]font.Face)}, nil
}

// Width implements [Measurer].
func (m *FaceMeasurer) Width(text string, size float64, bold bool) float64 {
	face, err := m.face(size)
	if err != nil {
		// Face construction failing after a successful parse is a
		// degenerate size; fall back to the estimator.
		return Estimator{}.Width(text, size, bold)
	}
	px := fixedToPixels(font.MeasureString(face, text))
	if bold {
		px *= boldWidthFactor
	}
	return px
}

func (m *FaceMeasurer) face(size float64) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// BasicFace is a last-resort [Measurer] over the built-in fixed
// 7x13 bitmap face, scaled linearly to the requested size. Useful in
// environments without any font file; noticeably cruder than
// [Estimator] for numeric text.
type BasicFace struct{}

// Width implements [Measurer].
func (BasicFace) Width(text string, size float64, bold bool) float64 {
	px := fixedToPixels(font.MeasureString(basicfont.Face7x13, text))
	px *= size / float64(basicfont.Face7x13.Height)
	if bold {
		px *= boldWidthFactor
	}
	return px
}

func fixedToPixels(w fixed.Int26_6) float64 { return float64(w) / 64.0 }

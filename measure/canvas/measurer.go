package canvasmeasure

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rivo/uniseg"
	"github.com/tdewolff/canvas"

	"github.com/lchau1017/KaraokeLyrics-sub001/fonts"
	"github.com/lchau1017/KaraokeLyrics-sub001/layout"
)

// Measurer measures lyric text with real font outlines via github.com/tdewolff/canvas.
// canvas works in millimetres and points; Measure converts to and from pixels at the
// boundary.
type Measurer struct {
	baseDir string
	log     *log.Logger

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
	warned         map[string]bool
}

var _ layout.Measurer = (*Measurer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// New creates a measurer resolving relative font paths against baseDir. logger may be nil.
func New(baseDir string, logger *log.Logger) *Measurer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Measurer{
		baseDir:      baseDir,
		log:          logger,
		fontFamilies: map[string]*fontFamilyEntry{},
		warned:       map[string]bool{},
	}
}

// Measure implements layout.Measurer. If no font can be loaded it falls back to
// layout.EstimateMetrics so layout can still proceed.
func (m *Measurer) Measure(text string, style layout.TextStyle) layout.Metrics {
	face, err := m.fontFace(style)
	if err != nil {
		m.warnOnce(style.Font, err)
		return layout.EstimateMetrics(text, style)
	}
	fm := face.Metrics()
	out := layout.Metrics{
		Width:         toPx(face.TextWidth(text)),
		Height:        toPx(fm.LineHeight),
		FirstBaseline: toPx(fm.Ascent),
	}
	if text == "" {
		return out
	}
	// 每个字素簇的右边界
	g := uniseg.NewGraphemes(text)
	var prefix strings.Builder
	for g.Next() {
		prefix.WriteString(g.Str())
		out.CharBounds = append(out.CharBounds, toPx(face.TextWidth(prefix.String())))
	}
	return out
}

func (m *Measurer) warnOnce(font string, err error) {
	m.fontMu.Lock()
	defer m.fontMu.Unlock()
	if m.warned[font] {
		return
	}
	m.warned[font] = true
	m.log.Warn("font unavailable, estimating text metrics", "font", font, "err", err)
}

func (m *Measurer) fontFace(style layout.TextStyle) (*canvas.FontFace, error) {
	family, fs, err := m.ensureFontFamily(style)
	if err != nil {
		return nil, err
	}
	size := style.Size
	if size <= 0 {
		size = 16
	}
	return family.Face(size/layout.PtToPx, canvas.Black, fs, canvas.FontNormal), nil
}

func (m *Measurer) ensureFontFamily(style layout.TextStyle) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := style.Font + "|" + style.Weight
	m.fontMu.Lock()
	defer m.fontMu.Unlock()

	if entry, ok := m.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	fs := parseFontStyle(style.Weight)
	family := canvas.NewFontFamily(familyName(style.Font))
	if err := m.loadFontIntoFamily(family, style.Font, fs); err != nil {
		fallback, fbErr := m.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, fmt.Errorf("load font %q: %w", style.Font, err)
		}
		m.log.Warn("font unavailable, using embedded fallback", "font", style.Font, "err", err)
		m.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	m.fontFamilies[key] = &fontFamilyEntry{family: family, style: fs}
	return family, fs, nil
}

func (m *Measurer) loadFontIntoFamily(family *canvas.FontFamily, spec string, fs canvas.FontStyle) error {
	data, err := fonts.Load(spec, m.baseDir)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, fs)
}

func (m *Measurer) fallback() (*canvas.FontFamily, error) {
	if m.fallbackFamily != nil {
		return m.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default, "")
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("karaoke-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	m.fallbackFamily = family
	return family, nil
}

func familyName(spec string) string {
	if spec == "" {
		return "Lyrics"
	}
	return spec
}

// parseFontStyle 将 "bold italic"、"light" 等描述映射为 canvas.FontStyle。
func parseFontStyle(weight string) canvas.FontStyle {
	s := strings.ToLower(weight)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

// toPx 将 canvas 的毫米转换为像素。
func toPx(mm float64) float64 { return mm * layout.MmToPx }

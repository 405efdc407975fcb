package render

import (
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/timepilot/internal/config"
	"github.com/zeusync/timepilot/internal/core/entity"
)

const (
	colorPrefix   = "color:"
	fallbackGlyph = '?'
	colorGlyph    = '•'
)

// Terminal draws sprites on a tcell screen. The camera sits in the middle
// of the screen and each cell covers CellWidth x CellHeight world pixels.
type Terminal struct {
	screen     tcell.Screen
	cellWidth  float64
	cellHeight float64
	glyphs     map[string]rune
	background tcell.Style

	mu     sync.Mutex
	status string
}

var _ Canvas = (*Terminal)(nil)

func NewTerminal(screen tcell.Screen, cfg config.RenderConfig) *Terminal {
	glyphs := make(map[string]rune, len(cfg.Glyphs))
	for src, g := range cfg.Glyphs {
		if r := []rune(g); len(r) > 0 {
			glyphs[src] = r[0]
		}
	}
	cw, ch := cfg.CellWidth, cfg.CellHeight
	if cw <= 0 {
		cw = 8
	}
	if ch <= 0 {
		ch = 16
	}
	return &Terminal{
		screen:     screen,
		cellWidth:  float64(cw),
		cellHeight: float64(ch),
		glyphs:     glyphs,
		background: tcell.StyleDefault,
	}
}

// SetBackground paints empty cells with a "#rgb" or "#rrggbb" colour.
func (t *Terminal) SetBackground(hex string) {
	t.background = tcell.StyleDefault.Background(ParseColor(hex))
}

// SetStatus sets the text shown on the bottom row from the next Present.
func (t *Terminal) SetStatus(s string) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *Terminal) Begin() {
	t.screen.SetStyle(t.background)
	t.screen.Clear()
}

func (t *Terminal) Present() {
	t.mu.Lock()
	status := t.status
	t.mu.Unlock()

	if status != "" {
		_, h := t.screen.Size()
		col := 0
		for _, r := range status {
			t.screen.SetContent(col, h-1, r, nil, t.background.Reverse(true))
			col++
		}
	}
	t.screen.Show()
}

// RenderSprite fills the cells covered by the frame. Pixel positions are
// relative to the screen centre.
func (t *Terminal) RenderSprite(sprite entity.Sprite, frame entity.SpriteFrame) {
	w, h := t.screen.Size()
	glyph, style := t.look(sprite)

	x0 := w/2 + int(math.Floor(frame.PosX/t.cellWidth))
	y0 := h/2 + int(math.Floor(frame.PosY/t.cellHeight))
	cols := max(1, int(math.Round(float64(frame.FrameWidth)/t.cellWidth)))
	rows := max(1, int(math.Round(float64(frame.FrameHeight)/t.cellHeight)))

	for y := y0; y < y0+rows; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := x0; x < x0+cols; x++ {
			if x < 0 || x >= w {
				continue
			}
			t.screen.SetContent(x, y, glyph, nil, style)
		}
	}
}

func (t *Terminal) look(sprite entity.Sprite) (rune, tcell.Style) {
	if hex, ok := strings.CutPrefix(sprite.Src, colorPrefix); ok {
		return colorGlyph, t.background.Foreground(ParseColor(hex))
	}
	if g, ok := t.glyphs[sprite.Src]; ok {
		return g, t.background.Foreground(tcell.ColorWhite)
	}
	return fallbackGlyph, t.background
}

// ParseColor accepts "#rgb" and "#rrggbb"; anything else is ColorDefault.
func ParseColor(hex string) tcell.Color {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

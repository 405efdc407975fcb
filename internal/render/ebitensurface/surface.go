// Package ebitensurface draws the game in a window with ebiten. Draw calls
// made by the ticker goroutine are buffered per pass and replayed on
// ebiten's draw thread.
package ebitensurface

import (
	"image"
	"image/color"
	_ "image/png"
	"io/fs"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/internal/core/observability/log"
	"github.com/zeusync/timepilot/internal/render"
)

const colorPrefix = "color:"

// Surface is a render.Canvas for ebiten.
type Surface struct {
	assets     fs.FS
	logger     log.Log
	background color.RGBA

	mu       sync.Mutex
	building []render.Command
	shown    []render.Command

	// images is only touched from Draw.
	images map[string]*ebiten.Image
	pixel  *ebiten.Image
}

var _ render.Canvas = (*Surface)(nil)

// New creates a surface that loads sprite sources from assets. A nil assets
// draws every image sprite as a magenta placeholder.
func New(assets fs.FS, logger log.Log) *Surface {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Surface{
		assets:     assets,
		logger:     logger.With(log.Component("ebiten")),
		background: color.RGBA{A: 0xff},
		images:     make(map[string]*ebiten.Image),
	}
}

func (s *Surface) SetLogger(l log.Log) {
	if l != nil {
		s.logger = l.With(log.Component("ebiten"))
	}
}

func (s *Surface) SetBackground(hex string) {
	if r, g, b, ok := render.ParseHex(hex); ok {
		s.background = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
}

func (s *Surface) RenderSprite(sprite entity.Sprite, frame entity.SpriteFrame) {
	s.mu.Lock()
	s.building = append(s.building, render.Command{Sprite: sprite, Frame: frame})
	s.mu.Unlock()
}

func (s *Surface) Begin() {
	s.mu.Lock()
	s.building = s.building[:0]
	s.mu.Unlock()
}

// Present makes the pass built since Begin the one Draw replays.
func (s *Surface) Present() {
	s.mu.Lock()
	s.shown, s.building = s.building, s.shown[:0]
	s.mu.Unlock()
}

// Shown copies the pass Draw currently replays.
func (s *Surface) Shown() []render.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]render.Command(nil), s.shown...)
}

// Draw replays the last presented pass with the camera at the screen centre.
func (s *Surface) Draw(screen *ebiten.Image) {
	screen.Fill(s.background)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	s.mu.Lock()
	cmds := append([]render.Command(nil), s.shown...)
	s.mu.Unlock()

	for _, cmd := range cmds {
		op := &ebiten.DrawImageOptions{}
		x, y := Destination(cmd.Frame, w, h)

		if hex, ok := strings.CutPrefix(cmd.Sprite.Src, colorPrefix); ok {
			r, g, b, _ := render.ParseHex(hex)
			op.GeoM.Scale(float64(cmd.Frame.FrameWidth), float64(cmd.Frame.FrameHeight))
			op.GeoM.Translate(x, y)
			op.ColorScale.ScaleWithColor(color.RGBA{R: r, G: g, B: b, A: 0xff})
			screen.DrawImage(s.whitePixel(), op)
			continue
		}

		img := s.image(cmd.Sprite.Src)
		op.GeoM.Translate(x, y)
		src := SourceRect(cmd.Frame).Intersect(img.Bounds())
		if src.Empty() {
			src = img.Bounds()
		}
		screen.DrawImage(img.SubImage(src).(*ebiten.Image), op)
	}
}

// SourceRect is the pixel crop of the sheet for frame.
func SourceRect(frame entity.SpriteFrame) image.Rectangle {
	x := frame.FrameX * frame.FrameWidth
	y := frame.FrameY * frame.FrameHeight
	return image.Rect(x, y, x+frame.FrameWidth, y+frame.FrameHeight)
}

// Destination converts camera-relative pixels to screen pixels.
func Destination(frame entity.SpriteFrame, screenW, screenH int) (float64, float64) {
	return float64(screenW)/2 + frame.PosX, float64(screenH)/2 + frame.PosY
}

func (s *Surface) whitePixel() *ebiten.Image {
	if s.pixel == nil {
		s.pixel = ebiten.NewImage(1, 1)
		s.pixel.Fill(color.White)
	}
	return s.pixel
}

func (s *Surface) image(src string) *ebiten.Image {
	if img, ok := s.images[src]; ok {
		return img
	}
	img, err := s.load(src)
	if err != nil {
		s.logger.Warn("Sprite unavailable, using placeholder", log.String("src", src), log.Error(err))
		img = ebiten.NewImage(16, 16)
		img.Fill(color.RGBA{R: 0xff, B: 0xff, A: 0xff})
	}
	s.images[src] = img
	return img
}

func (s *Surface) load(src string) (*ebiten.Image, error) {
	if s.assets == nil {
		return nil, fs.ErrNotExist
	}
	f, err := s.assets.Open(strings.TrimPrefix(src, "./"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

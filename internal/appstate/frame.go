package appstate

import (
	"context"
	"image"
	"image/draw"
	"log"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/tenzor/internal/drag"
	"github.com/example/tenzor/internal/render"
	"github.com/example/tenzor/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// card is an overlay to draw, positioned in device pixels.
type card struct {
	rect    image.Rectangle
	title   string
	body    string
	loading bool
}

type paintState struct {
	width, height int
	ratio         float64
	theme         *theme.Theme
	board         *image.RGBA
	buttons       []*CacheButton
	states        []ButtonState
	cards         []card
	message       string
	messageUntil  time.Time
}

type cardKey struct {
	size    image.Point
	title   string
	body    string
	loading bool
}

// cardCache is only touched by the frame goroutine.
var cardCache = map[cardKey]render.Shadowed{}

const maxCachedCards = 32

func renderCard(c card, ratio float64, th *theme.Theme) render.Shadowed {
	k := cardKey{size: c.rect.Size(), title: c.title, body: c.body, loading: c.loading}
	if sr, ok := cardCache[k]; ok {
		return sr
	}
	st := render.CardStyle{
		Background: th.OverlayBackground,
		Border:     th.OverlayBorder,
		Title:      th.OverlayTitle,
		Text:       th.OverlayText,
	}
	if c.loading {
		st.Border = th.OverlayLoading
		st.Text = th.OverlayLoading
	}
	logical := drag.DefaultBounds(image.Point{}).Size
	img := render.Card(logical, c.title, c.body, st, render.DefaultFaces())
	if k.size != logical {
		scaled := image.NewRGBA(image.Rectangle{Max: k.size})
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}
	sr := render.CardShadow(ratio).Cast(img)
	if len(cardCache) >= maxCachedCards {
		cardCache = map[cardKey]render.Shadowed{}
	}
	cardCache[k] = sr
	return sr
}

func drawCards(dst *image.RGBA, cards []card, ratio float64, th *theme.Theme) {
	for _, c := range cards {
		sr := renderCard(c, ratio, th)
		if sr.Image == nil {
			continue
		}
		at := c.rect.Min.Sub(sr.Offset)
		draw.Draw(dst, sr.Image.Bounds().Add(at), sr.Image, image.Point{}, draw.Over)
	}
}

func drawToolbar(dst *image.RGBA, st paintState) {
	h := int(float64(toolbarHeight) * st.ratio)
	bar := image.Rect(0, 0, st.width, h)
	draw.Draw(dst, bar, &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	for i, btn := range st.buttons {
		btn.Draw(dst, st.states[i])
	}
}

func drawMessage(dst *image.RGBA, st paintState) {
	if st.message == "" || !time.Now().Before(st.messageUntil) {
		return
	}
	face := render.DefaultFaces().Body
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(st.theme.Foreground), Face: face}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := (st.width - wmsg) / 2
	py := st.height - descent - 24
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := st.theme.ToolbarBackground
	bg.A = 230
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
	drawRect(dst, rect, st.theme.SwatchBorder, 1)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}

// composeFrame draws st into dst, stopping early when ctx is canceled. It
// reports whether the frame is complete.
func composeFrame(ctx context.Context, dst *image.RGBA, st paintState) bool {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{st.theme.Background}, image.Point{}, draw.Src)
	if st.board != nil {
		draw.Draw(dst, st.board.Bounds(), st.board, image.Point{}, draw.Over)
	}
	if ctx.Err() != nil {
		return false
	}
	drawCards(dst, st.cards, st.ratio, st.theme)
	if ctx.Err() != nil {
		return false
	}
	drawToolbar(dst, st)
	drawMessage(dst, st)
	return ctx.Err() == nil
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if !composeFrame(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}


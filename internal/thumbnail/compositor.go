// Package thumbnail flattens a generated background, a legibility gradient
// and an optional text overlay into one exportable 1280x720 raster.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/Pradeep20056/thumbnail-genie/internal/domain"
)

const (
	// CanvasWidth and CanvasHeight fix the export resolution.
	CanvasWidth  = 1280
	CanvasHeight = 720

	// wrapMargin keeps text off the canvas edges; lines wrap at width-margin.
	wrapMargin = 100

	// exportScale doubles preview-scale style values back to export
	// resolution. The editor previews at half size, so a 48px preview font
	// renders at 96px here.
	exportScale = 2

	// lineHeightFactor stacks wrapped lines at 2.5x the configured font size.
	lineHeightFactor = 2.5

	// shadowOffset shifts the drop shadow right and down.
	shadowOffset = 4

	// edgeOffset anchors top/bottom text blocks away from the canvas edge.
	edgeOffset = 100
)

// ErrBadBackground reports an undecodable background image. The export must
// abort rather than produce a blank canvas.
var ErrBadBackground = errors.New("thumbnail: cannot decode background image")

// Overlay is the optional text burned onto the background.
type Overlay struct {
	Text     string
	Position domain.TextPosition
	Style    domain.OverlayStyle
}

var (
	boldFontOnce sync.Once
	boldFont     *opentype.Font
	boldFontErr  error
)

func loadBoldFont() (*opentype.Font, error) {
	boldFontOnce.Do(func() {
		boldFont, boldFontErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldFontErr
}

// Render composites the final thumbnail and returns it as lossless PNG.
// The background may be raw image bytes or a base64 data URI.
func Render(background []byte, overlay *Overlay) ([]byte, error) {
	src, err := decodeBackground(background)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	drawCover(canvas, src)
	drawGradient(canvas)

	if overlay != nil && strings.TrimSpace(overlay.Text) != "" {
		if err := drawOverlay(canvas, overlay); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("thumbnail: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBackground(data []byte) (image.Image, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "data:") {
		idx := strings.Index(trimmed, ",")
		if idx < 0 {
			return nil, ErrBadBackground
		}
		decoded, err := base64.StdEncoding.DecodeString(trimmed[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBackground, err)
		}
		data = decoded
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBackground, err)
	}
	return img, nil
}

// drawCover scales the source to fill the canvas exactly, cropping the
// overflow around the center (CSS object-fit: cover).
func drawCover(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	if srcW == 0 || srcH == 0 {
		return
	}

	canvasRatio := float64(CanvasWidth) / float64(CanvasHeight)
	srcRatio := float64(srcW) / float64(srcH)

	crop := sb
	if srcRatio > canvasRatio {
		// Source is wider: crop left/right.
		cropW := int(float64(srcH) * canvasRatio)
		x0 := sb.Min.X + (srcW-cropW)/2
		crop = image.Rect(x0, sb.Min.Y, x0+cropW, sb.Max.Y)
	} else if srcRatio < canvasRatio {
		// Source is taller: crop top/bottom.
		cropH := int(float64(srcW) / canvasRatio)
		y0 := sb.Min.Y + (srcH-cropH)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+cropH)
	}

	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
}

// drawGradient lays a vertical fade from fully transparent at the vertical
// midpoint to 60% opaque black at the bottom edge, so overlay text stays
// legible on any background.
func drawGradient(dst *image.RGBA) {
	mid := CanvasHeight / 2
	for y := mid; y < CanvasHeight; y++ {
		alpha := uint8(float64(y-mid) / float64(CanvasHeight-mid) * 0.6 * 255)
		row := image.Rect(0, y, CanvasWidth, y+1)
		draw.Draw(dst, row, image.NewUniform(color.NRGBA{A: alpha}), image.Point{}, draw.Over)
	}
}

func drawOverlay(dst *image.RGBA, overlay *Overlay) error {
	style := overlay.Style
	if style.FontSize <= 0 {
		style.FontSize = domain.DefaultOverlayStyle().FontSize
	}

	face, err := newBoldFace(float64(style.FontSize * exportScale))
	if err != nil {
		return err
	}
	defer face.Close()

	lines := WrapLines(face, overlay.Text, CanvasWidth-wrapMargin)
	if len(lines) == 0 {
		return nil
	}

	lineHeight := int(lineHeightFactor * float64(style.FontSize) * exportScale)

	anchor := anchorY(overlay.Position)
	blockTop := anchor - lineHeight*len(lines)/2

	textColor := parseHexColor(style.Color, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	shadowColor := parseHexColor(style.ShadowColor, color.NRGBA{A: 255})

	// Shadow pass: same glyphs offset down-right, blurred, composited first.
	shadow := image.NewRGBA(dst.Bounds())
	for i, line := range lines {
		drawLine(shadow, face, line, blockTop+i*lineHeight+lineHeight/2, shadowOffset, shadowColor)
	}
	if blur := style.ShadowBlur * exportScale; blur > 0 {
		shadow = boxBlur(shadow, blur)
	}
	draw.Draw(dst, dst.Bounds(), shadow, image.Point{}, draw.Over)

	for i, line := range lines {
		drawLine(dst, face, line, blockTop+i*lineHeight+lineHeight/2, 0, textColor)
	}
	return nil
}

func newBoldFace(size float64) (font.Face, error) {
	f, err := loadBoldFont()
	if err != nil {
		return nil, fmt.Errorf("thumbnail: load font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("thumbnail: build face: %w", err)
	}
	return face, nil
}

func anchorY(pos domain.TextPosition) int {
	switch pos {
	case domain.PositionTop:
		return edgeOffset
	case domain.PositionCenter:
		return CanvasHeight / 2
	default:
		return CanvasHeight - edgeOffset
	}
}

// WrapLines performs the greedy word wrap: words accumulate into a line while
// its rendered width stays within maxWidth; the word that would overflow
// starts the next line. A single word wider than maxWidth gets its own line.
func WrapLines(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	drawer := &font.Drawer{Face: face}
	limit := fixed.I(maxWidth)

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if drawer.MeasureString(candidate) > limit {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

// drawLine renders one line horizontally centered, with the given baseline
// offset applied to both axes (used by the shadow pass).
func drawLine(dst draw.Image, face font.Face, line string, centerY, offset int, col color.NRGBA) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := drawer.MeasureString(line)
	metrics := face.Metrics()
	// Center the cap height around centerY.
	baseline := centerY + metrics.Ascent.Round()/2
	drawer.Dot = fixed.P((CanvasWidth-width.Round())/2+offset, baseline+offset)
	drawer.DrawString(line)
}

// boxBlur applies a two-pass box blur, a close-enough stand-in for the
// canvas shadowBlur gaussian at these radii.
func boxBlur(src *image.RGBA, radius int) *image.RGBA {
	if radius <= 0 {
		return src
	}
	horizontal := blurPass(src, radius, true)
	return blurPass(horizontal, radius, false)
}

func blurPass(src *image.RGBA, radius int, horizontal bool) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	w, h := bounds.Dx(), bounds.Dy()
	window := radius*2 + 1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a int
			for k := -radius; k <= radius; k++ {
				sx, sy := x, y
				if horizontal {
					sx += k
				} else {
					sy += k
				}
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue
				}
				i := src.PixOffset(bounds.Min.X+sx, bounds.Min.Y+sy)
				r += int(src.Pix[i])
				g += int(src.Pix[i+1])
				b += int(src.Pix[i+2])
				a += int(src.Pix[i+3])
			}
			o := dst.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			dst.Pix[o] = uint8(r / window)
			dst.Pix[o+1] = uint8(g / window)
			dst.Pix[o+2] = uint8(b / window)
			dst.Pix[o+3] = uint8(a / window)
		}
	}
	return dst
}

// parseHexColor accepts #rgb and #rrggbb; anything else yields the fallback.
func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return fallback
		}
		return color.NRGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return fallback
		}
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	default:
		return fallback
	}
}

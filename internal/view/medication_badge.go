package view

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/medimate/internal/medication"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultBadgeSize 为未指定尺寸时的边长（像素）
	DefaultBadgeSize = 64
	minBadgeSize     = 16
	maxBadgeSize     = 512
)

// ErrInvalidColor 表示颜色不是 #RGB 或 #RRGGBB 形式
var ErrInvalidColor = errors.New("invalid color")

// ParseHexColor 解析 #RGB / #RRGGBB 颜色。
func ParseHexColor(raw string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	return color.RGBA{R: uint8(value >> 16), G: uint8(value >> 8), B: uint8(value), A: 0xff}, nil
}

// BadgeColor 返回药品颜色，无法解析时使用调色板第一个颜色。
func BadgeColor(raw string) color.RGBA {
	if c, err := ParseHexColor(raw); err == nil {
		return c
	}
	c, _ := ParseHexColor(medication.Palette[0])
	return c
}

// BadgeLetter 取名称中第一个字母或数字。内置点阵字体只覆盖 ASCII，其余文字显示为 '+'。
func BadgeLetter(name string) rune {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if r > unicode.MaxASCII {
			return '+'
		}
		return unicode.ToUpper(r)
	}
	return '+'
}

// RenderBadge 以 PNG 输出圆形药品徽章：药品颜色填充，中间为名称首字母。
func RenderBadge(w io.Writer, name, fill string, size int) error {
	size = clampBadgeSize(size)
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	bg := BadgeColor(fill)
	radius := float64(size) / 2
	for y := 0; y < size; y++ {
		dy := float64(y) + 0.5 - radius
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - radius
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, bg)
			}
		}
	}

	glyph := renderGlyph(BadgeLetter(name), textColorFor(bg))
	gh := size * 3 / 5
	gw := gh * glyph.Bounds().Dx() / glyph.Bounds().Dy()
	x0 := (size - gw) / 2
	y0 := (size - gh) / 2
	xdraw.NearestNeighbor.Scale(img, image.Rect(x0, y0, x0+gw, y0+gh), glyph, glyph.Bounds(), xdraw.Over, nil)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode badge: %w", err)
	}
	return nil
}

func renderGlyph(letter rune, fg color.Color) *image.RGBA {
	face := basicfont.Face7x13
	glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	drawer := font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(string(letter))
	return glyph
}

// 浅色背景上使用深色文字
func textColorFor(bg color.RGBA) color.RGBA {
	luma := (299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)) / 1000
	if luma > 186 {
		return color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	}
	return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
}

func clampBadgeSize(size int) int {
	switch {
	case size <= 0:
		return DefaultBadgeSize
	case size < minBadgeSize:
		return minBadgeSize
	case size > maxBadgeSize:
		return maxBadgeSize
	default:
		return size
	}
}

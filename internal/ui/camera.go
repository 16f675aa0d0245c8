package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ingyamilmolinar/staffline/core/geom"
)

const (
	scrollStep         = 40 // px per wheel notch
	zoomFactor         = 1.05
	minScale, maxScale = 0.5, 3.0
)

// Camera maps the score canvas onto the window: the canvas is scaled by
// Scale and shifted by the offsets, so scrolling moves OffsetY.
type Camera struct {
	Scale   float64
	OffsetX float64
	OffsetY float64

	// Content is the canvas size the offsets are clamped against.
	ContentW, ContentH float64
	ViewW, ViewH       float64
}

func NewCamera(contentW, contentH float64) *Camera {
	return &Camera{Scale: 1, ContentW: contentW, ContentH: contentH}
}

// ScreenPos converts canvas coordinates to window pixels.
func (c *Camera) ScreenPos(x, y float64) (sx, sy float64) {
	sx = x*c.Scale + c.OffsetX
	sy = y*c.Scale + c.OffsetY
	return
}

// CanvasPos converts window pixels to canvas coordinates.
func (c *Camera) CanvasPos(sx, sy int) geom.Point {
	return geom.Pt((float64(sx)-c.OffsetX)/c.Scale, (float64(sy)-c.OffsetY)/c.Scale)
}

// GeoMRounded is the canvas transform with the translation snapped to whole
// pixels so staff lines stay crisp while scrolling.
func (c *Camera) GeoMRounded() ebiten.GeoM {
	var m ebiten.GeoM
	m.Scale(c.Scale, c.Scale)
	m.Translate(math.Round(c.OffsetX), math.Round(c.OffsetY))
	return m
}

// Snap rounds the offsets and keeps the canvas from scrolling past its
// edges. A canvas narrower than the view is centred horizontally.
func (c *Camera) Snap() {
	w, h := c.ContentW*c.Scale, c.ContentH*c.Scale
	if w <= c.ViewW {
		c.OffsetX = (c.ViewW - w) / 2
	} else {
		c.OffsetX = clamp(c.OffsetX, c.ViewW-w, 0)
	}
	if h <= c.ViewH {
		c.OffsetY = 0
	} else {
		c.OffsetY = clamp(c.OffsetY, c.ViewH-h, 0)
	}
	c.OffsetX = math.Round(c.OffsetX)
	c.OffsetY = math.Round(c.OffsetY)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// HandleWheel scrolls on the wheel, or zooms around the cursor while a
// control key is held. It reports whether the view moved.
func (c *Camera) HandleWheel() bool {
	wheelX, wheelY := wheel()
	if wheelX == 0 && wheelY == 0 {
		return false
	}
	beforeX, beforeY := c.OffsetX, c.OffsetY
	beforeScale := c.Scale
	if isKeyPressed(ebiten.KeyControlLeft) || isKeyPressed(ebiten.KeyControlRight) {
		mx, my := cursorPosition()
		anchor := c.CanvasPos(mx, my)
		c.Scale = clamp(c.Scale*math.Pow(zoomFactor, wheelY), minScale, maxScale)
		c.OffsetX = float64(mx) - anchor.X*c.Scale
		c.OffsetY = float64(my) - anchor.Y*c.Scale
	} else {
		c.OffsetX += wheelX * scrollStep
		c.OffsetY += wheelY * scrollStep
	}
	c.Snap()
	return c.OffsetX != beforeX || c.OffsetY != beforeY || c.Scale != beforeScale
}

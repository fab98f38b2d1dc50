// Package graticule renders coordinate-grid plots of sky projections.
// Meridians and parallels are sampled on the celestial sphere, pushed
// through the projection's plane mapping and stroked into an RGBA
// image, with optional coordinate labels.
package graticule

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/skymath/wcsproj/wcs"
)

// Options controls the rendered plot.
type Options struct {
	// Width and Height are the image size in pixels. Both default to 800.
	Width, Height int

	// Scale is the plane size of one pixel in degrees. Defaults to a
	// value that fits a full 360-degree plane width into the image.
	Scale float64

	// LonStep and LatStep are the grid spacing in degrees. They default
	// to 30 and 15.
	LonStep, LatStep float64

	// Labels enables coordinate labels along the equator and the
	// central meridian.
	Labels bool
}

func (o *Options) applyDefaults() {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Scale <= 0 {
		o.Scale = 360 / float64(o.Width)
	}
	if o.LonStep <= 0 {
		o.LonStep = 30
	}
	if o.LatStep <= 0 {
		o.LatStep = 15
	}
}

var (
	backgroundColor = color.RGBA{255, 255, 255, 255}
	gridColor       = color.RGBA{140, 150, 170, 255}
	axisColor       = color.RGBA{60, 70, 100, 255}
	labelColor      = color.RGBA{30, 30, 30, 255}
)

// maxSegment is the largest on-sky separation between consecutive
// samples of a grid curve. Segments longer than this are subdivided so
// curved graticule lines stay smooth at any scale.
const maxSegment = s1.Degree / 2

// Render draws the graticule of p into a new image.
func Render(p *wcs.Projection, o Options) *image.RGBA {
	o.applyDefaults()

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	c := &canvas{
		p:     p,
		img:   img,
		cx:    float64(o.Width) / 2,
		cy:    float64(o.Height) / 2,
		scale: o.Scale,
	}

	// Parallels, equator last so it is stroked on top.
	for lat := o.LatStep; lat < 90; lat += o.LatStep {
		c.drawParallel(lat, gridColor)
		c.drawParallel(-lat, gridColor)
	}
	c.drawParallel(0, axisColor)

	// Meridians. The 0 meridian doubles as the 360 one.
	for lon := o.LonStep; lon < 360; lon += o.LonStep {
		c.drawMeridian(lon, gridColor)
	}
	c.drawMeridian(0, axisColor)

	if o.Labels {
		c.drawLabels(o)
	}
	return img
}

// canvas maps celestial positions to pixels and strokes curves.
type canvas struct {
	p     *wcs.Projection
	img   *image.RGBA
	cx    float64
	cy    float64
	scale float64
}

// toPixel projects a celestial position onto the image. ok is false for
// positions outside the projection footprint.
func (c *canvas) toPixel(ll s2.LatLng) (px, py float64, ok bool) {
	lon := ll.Lng.Degrees()
	lat := ll.Lat.Degrees()
	if !c.p.Visible(lon, lat) {
		return 0, 0, false
	}
	x, y, err := c.p.FromSky(lon, lat)
	if err != nil {
		return 0, 0, false
	}
	return c.cx + x/c.scale, c.cy - y/c.scale, true
}

func (c *canvas) drawParallel(lat float64, col color.RGBA) {
	n := 72
	pts := make([]s2.LatLng, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = s2.LatLngFromDegrees(lat, 360*float64(i)/float64(n))
	}
	c.drawCurve(pts, col)
}

func (c *canvas) drawMeridian(lon float64, col color.RGBA) {
	n := 36
	pts := make([]s2.LatLng, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = s2.LatLngFromDegrees(-90+180*float64(i)/float64(n), lon)
	}
	c.drawCurve(pts, col)
}

// drawCurve strokes a polyline given by on-sky vertices, subdividing
// each leg until consecutive samples are at most maxSegment apart.
func (c *canvas) drawCurve(pts []s2.LatLng, col color.RGBA) {
	for i := 1; i < len(pts); i++ {
		c.drawArc(s2.PointFromLatLng(pts[i-1]), s2.PointFromLatLng(pts[i]), col)
	}
}

func (c *canvas) drawArc(a, b s2.Point, col color.RGBA) {
	dist := a.Distance(b)
	steps := int(math.Ceil(float64(dist / maxSegment)))
	if steps < 1 {
		steps = 1
	}

	prevOK := false
	var prevX, prevY float64
	for i := 0; i <= steps; i++ {
		pt := s2.Interpolate(float64(i)/float64(steps), a, b)
		px, py, ok := c.toPixel(s2.LatLngFromPoint(pt))
		if ok && prevOK {
			c.strokeSegment(prevX, prevY, px, py, col)
		}
		prevX, prevY, prevOK = px, py, ok
	}
}

// strokeSegment draws a straight pixel segment. Segments longer than a
// quarter of the image are dropped: they come from plane wraparound at
// a projection discontinuity, not from the curve itself.
func (c *canvas) strokeSegment(x0, y0, x1, y1 float64, col color.RGBA) {
	dx, dy := x1-x0, y1-y0
	limit := float64(c.img.Bounds().Dx()) / 4
	if math.Abs(dx) > limit || math.Abs(dy) > limit {
		return
	}
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.setPixel(x0+t*dx, y0+t*dy, col)
	}
}

func (c *canvas) setPixel(px, py float64, col color.RGBA) {
	x, y := int(math.Round(px)), int(math.Round(py))
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.SetRGBA(x, y, col)
	}
}

func (c *canvas) drawLabels(o Options) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
	}

	// Longitude labels along the equator.
	for lon := 0.0; lon < 360; lon += o.LonStep {
		px, py, ok := c.toPixel(s2.LatLngFromDegrees(0, lon))
		if !ok {
			continue
		}
		c.placeLabel(d, px, py, fmt.Sprintf("%g", lon))
	}

	// Latitude labels along the meridian through the fiducial point.
	lon0, _ := c.p.Reference()
	for lat := -90 + o.LatStep; lat < 90; lat += o.LatStep {
		if lat == 0 {
			continue
		}
		px, py, ok := c.toPixel(s2.LatLngFromDegrees(lat, lon0))
		if !ok {
			continue
		}
		c.placeLabel(d, px, py, fmt.Sprintf("%g", lat))
	}
}

func (c *canvas) placeLabel(d *font.Drawer, px, py float64, s string) {
	x, y := int(math.Round(px))+3, int(math.Round(py))-3
	if !image.Pt(x, y).In(c.img.Bounds()) {
		return
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

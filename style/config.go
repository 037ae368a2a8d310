// Package style implements the style computation engine : rule
// indexing, cascade resolution, inheritance, unit and custom
// property resolution, caching and invalidation, behind the
// Engine facade.
package style

import (
	pa "github.com/Corten-Browser/Corten-CSSEngine/css/parser"
	"github.com/Corten-Browser/Corten-CSSEngine/utils"
)

// Viewport describes the rendering context needed to resolve
// viewport-relative units and media queries.
type Viewport struct {
	Width, Height    utils.Fl
	DevicePixelRatio utils.Fl
	// RootFontSizePx is the user-agent default font size,
	// used as the rem basis before the root style is known.
	RootFontSizePx utils.Fl
}

// DefaultViewport is a common screen-like device.
var DefaultViewport = Viewport{
	Width:            1280,
	Height:           720,
	DevicePixelRatio: 1,
	RootFontSizePx:   16,
}

// fingerprint identifies the viewport for the style cache.
func (v Viewport) fingerprint() uint64 {
	h := uint64(14695981039346656037)
	for _, f := range [4]utils.Fl{v.Width, v.Height, v.DevicePixelRatio, v.RootFontSizePx} {
		h = (h ^ uint64(f*64)) * 1099511628211
	}
	return h
}

// EngineConfig bundles the engine knobs. The zero value is
// usable : defaults are applied by NewEngine.
type EngineConfig struct {
	Viewport Viewport
	Limits   pa.Limits
	// DisableUASheet skips the built-in user-agent stylesheet.
	DisableUASheet bool
	// DisableSharing turns the computed style cache off;
	// only useful to benchmarks and tests.
	DisableSharing bool
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Viewport == (Viewport{}) {
		c.Viewport = DefaultViewport
	}
	if c.Viewport.RootFontSizePx == 0 {
		c.Viewport.RootFontSizePx = 16
	}
	if c.Viewport.DevicePixelRatio == 0 {
		c.Viewport.DevicePixelRatio = 1
	}
	if c.Limits == (pa.Limits{}) {
		c.Limits = pa.DefaultLimits
	}
	return c
}

// Stats are engine counters, reset by ClearCache.
type Stats struct {
	CacheHits   int
	CacheMisses int
	// Restyled counts the elements whose style was recomputed.
	Restyled int
}

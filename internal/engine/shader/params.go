package shader

import (
	"fmt"
	"strings"
)

// MaxFrustumSplits is the largest supported cascade count.
const MaxFrustumSplits = 4

// FilterQuality selects shadow map filtering.
type FilterQuality int

const (
	FilterOff FilterQuality = iota
	FilterHardware
	FilterLow
	FilterLowHardware
	FilterHigh
	FilterHighHardware
)

var filterNames = [...]string{
	FilterOff:          "off",
	FilterHardware:     "hardware",
	FilterLow:          "low",
	FilterLowHardware:  "low_hardware",
	FilterHigh:         "high",
	FilterHighHardware: "high_hardware",
}

func (q FilterQuality) String() string {
	if q < 0 || int(q) >= len(filterNames) {
		return fmt.Sprintf("FilterQuality(%d)", int(q))
	}
	return filterNames[q]
}

// ParseFilterQuality parses the names produced by String.
func ParseFilterQuality(s string) (FilterQuality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for q, name := range filterNames {
		if name == s {
			return FilterQuality(q), nil
		}
	}
	return FilterOff, fmt.Errorf("unknown shadow filter quality %q", s)
}

// UsesHardwareFilter reports whether the depth texture should be sampled
// with linear filtering by the comparison sampler.
func (q FilterQuality) UsesHardwareFilter() bool {
	return q == FilterHardware || q == FilterLowHardware || q == FilterHighHardware
}

// AllowsPCSS reports whether soft shadows can be combined with q. PCSS
// needs raw depth taps, which only the shader-filtered modes provide.
func (q FilterQuality) AllowsPCSS() bool {
	return q == FilterLow || q == FilterHigh
}

// Filtered reports whether the shader applies its own filter kernel.
func (q FilterQuality) Filtered() bool {
	return q > FilterHardware
}

// HighQuality reports whether the large filter kernel is used.
func (q FilterQuality) HighQuality() bool {
	return q == FilterHigh || q == FilterHighHardware
}

// Params is the renderer state that selects a shader variant. It is a
// plain value: compare with ==, copy to override.
type Params struct {
	OpenGLES bool
	// ShadowTransform selects the depth-only variant used for shadow passes.
	ShadowTransform     bool
	PixelLighting       bool
	Bump                bool
	Shadows             bool
	ShadowFilterQuality FilterQuality
	PCSS                bool
	GeometryShader      bool
	TorchLight          bool
	// FrustumSplits is the cascade count, 1 or 4 when shadows are on.
	FrustumSplits    int
	HWShadowSamplers bool
}

// PCSSEnabled reports whether PCSS is requested and possible with the
// filter quality.
func (p Params) PCSSEnabled() bool {
	return p.PCSS && p.ShadowFilterQuality.AllowsPCSS()
}

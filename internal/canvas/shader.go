package canvas

import "strings"

// Shader identifies a visual effect in an item's shader stack. Order in the
// stack matters: effects apply cumulatively front to back.
type Shader string

const (
	ShaderPixellate         Shader = "pixellate"
	ShaderGrainy            Shader = "grainy"
	ShaderGrayscale         Shader = "grayscale"
	ShaderSpectral          Shader = "spectral"
	ShaderThreeDGlasses     Shader = "three_d_glasses"
	ShaderAlien             Shader = "alien"
	ShaderThickGlassSquares Shader = "thick_glass_squares"
	ShaderLens              Shader = "lens"
)

var allShaders = []Shader{
	ShaderPixellate,
	ShaderGrainy,
	ShaderGrayscale,
	ShaderSpectral,
	ShaderThreeDGlasses,
	ShaderAlien,
	ShaderThickGlassSquares,
	ShaderLens,
}

var shaderSet = func() map[Shader]struct{} {
	set := make(map[Shader]struct{}, len(allShaders))
	for _, shader := range allShaders {
		set[shader] = struct{}{}
	}
	return set
}()

// AllShaders returns the ordered list of known shader identifiers.
func AllShaders() []Shader {
	cp := make([]Shader, len(allShaders))
	copy(cp, allShaders)
	return cp
}

// ParseShader converts a string into a known Shader.
func ParseShader(value string) (Shader, bool) {
	normalized := Shader(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := shaderSet[normalized]
	return normalized, ok
}

package idscene

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

var (
	ErrUnknownCVar  = errors.New("unknown cvar")
	ErrCVarType     = errors.New("cvar has a different type")
	ErrInvalidValue = errors.New("invalid cvar value")
)

type CVarKind uint8

const (
	CVarBool CVarKind = iota
	CVarUint32
	CVarFloat32
)

// CVar is a console variable. Its kind is fixed by its default value.
type CVar struct {
	Description string
	Kind        CVarKind

	b bool
	u uint32
	f float32
}

func boolVar(desc string, v bool) *CVar       { return &CVar{Description: desc, Kind: CVarBool, b: v} }
func uint32Var(desc string, v uint32) *CVar   { return &CVar{Description: desc, Kind: CVarUint32, u: v} }
func float32Var(desc string, v float32) *CVar { return &CVar{Description: desc, Kind: CVarFloat32, f: v} }

func (c *CVar) String() string {
	switch c.Kind {
	case CVarBool:
		return strconv.FormatBool(c.b)
	case CVarUint32:
		return strconv.FormatUint(uint64(c.u), 10)
	default:
		return strconv.FormatFloat(float64(c.f), 'g', -1, 32)
	}
}

func (c *CVar) set(value string) error {
	switch c.Kind {
	case CVarBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(ErrInvalidValue, err.Error())
		}

		c.b = v
	case CVarUint32:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return errors.Wrap(ErrInvalidValue, err.Error())
		}

		c.u = uint32(v)
	default:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return errors.Wrap(ErrInvalidValue, err.Error())
		}

		c.f = float32(v)
	}

	return nil
}

// CVars is the set of console variables of a world.
type CVars struct {
	vars map[string]*CVar
}

// DefaultCVars returns a fresh set with every variable at its default.
func DefaultCVars() *CVars {
	return &CVars{vars: map[string]*CVar{
		"g_speed":        float32Var("The speed of the player, in units per tick.", 1),
		"g_speedshift":   float32Var("The speed of the player while shift is held, in units per tick.", 3),
		"r_fullbright":   boolVar("Render without sector lighting.", false),
		"r_lightfalloff": float32Var("Distance over which the light level drops by one.", 16),
		"r_msaa":         uint32Var("Number of MSAA samples.", 4),
		"r_znear":        float32Var("Camera near plane.", 1),
		"r_fov":          float32Var("Camera field of view in degrees.", 85),
	}}
}

func (c *CVars) lookup(name string, kind CVarKind) (*CVar, error) {
	v, ok := c.vars[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCVar, "%q", name)
	}

	if v.Kind != kind {
		return nil, errors.Wrapf(ErrCVarType, "%q", name)
	}

	return v, nil
}

func (c *CVars) Bool(name string) (bool, error) {
	v, err := c.lookup(name, CVarBool)
	if err != nil {
		return false, err
	}

	return v.b, nil
}

func (c *CVars) Uint32(name string) (uint32, error) {
	v, err := c.lookup(name, CVarUint32)
	if err != nil {
		return 0, err
	}

	return v.u, nil
}

func (c *CVars) Float32(name string) (float32, error) {
	v, err := c.lookup(name, CVarFloat32)
	if err != nil {
		return 0, err
	}

	return v.f, nil
}

// Get returns the variable called name.
func (c *CVars) Get(name string) (*CVar, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Set parses value according to the variable's kind.
func (c *CVars) Set(name, value string) error {
	v, ok := c.vars[name]
	if !ok {
		return errors.Wrapf(ErrUnknownCVar, "%q", name)
	}

	return errors.Wrapf(v.set(value), "failed to set %q", name)
}

// Names returns all variable names, sorted.
func (c *CVars) Names() []string {
	names := make([]string, 0, len(c.vars))
	for n := range c.vars {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// CVarUniforms is the render subset of the cvars as laid out for a uniform
// buffer. Booleans are widened to uint32.
type CVarUniforms struct {
	Fullbright   uint32
	LightFalloff float32
	MSAA         uint32
	ZNear        float32
	FOV          float32
}

func (c *CVars) Uniforms() CVarUniforms {
	var u CVarUniforms

	if c.vars["r_fullbright"].b {
		u.Fullbright = 1
	}

	u.LightFalloff = c.vars["r_lightfalloff"].f
	u.MSAA = c.vars["r_msaa"].u
	u.ZNear = c.vars["r_znear"].f
	u.FOV = c.vars["r_fov"].f

	return u
}

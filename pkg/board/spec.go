package board

import (
	"fmt"

	"github.com/matzehuels/hexroute/pkg/network"
)

// Kind names a board shape.
type Kind string

const (
	KindRectangular Kind = "rectangular"
	KindHexagonal   Kind = "hexagonal"
	KindTorus       Kind = "torus"
)

// Default values applied by [Spec.SetDefaults].
const (
	DefaultWidth  = 2
	DefaultHeight = 2
	DefaultLayers = 4
	DefaultCores  = network.MaxCores
)

// Spec describes a board to build.
//
// Width and Height count chips for rectangular boards and three-board units
// for tori. Layers applies to hexagonal boards and the boards of a torus.
// WrapAround applies to rectangular boards only; tori always wrap and
// hexagonal boards never do.
type Spec struct {
	Kind       Kind `toml:"kind" json:"kind"`
	Width      int  `toml:"width" json:"width,omitempty"`
	Height     int  `toml:"height" json:"height,omitempty"`
	Layers     int  `toml:"layers" json:"layers,omitempty"`
	Cores      int  `toml:"cores" json:"cores,omitempty"`
	WrapAround bool `toml:"wrap_around" json:"wrap_around,omitempty"`
}

// SetDefaults fills zero fields.
func (s *Spec) SetDefaults() {
	if s.Kind == "" {
		s.Kind = KindRectangular
	}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.Layers == 0 {
		s.Layers = DefaultLayers
	}
	if s.Cores == 0 {
		s.Cores = DefaultCores
	}
	if s.Kind == KindTorus {
		s.WrapAround = true
	}
}

// Validate checks the spec after defaults have been applied.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindRectangular, KindTorus:
		if s.Width < 1 || s.Height < 1 {
			return fmt.Errorf("board: %s size %dx%d must be positive", s.Kind, s.Width, s.Height)
		}
	case KindHexagonal:
	default:
		return fmt.Errorf("board: unknown kind %q", s.Kind)
	}
	if s.Kind != KindRectangular && s.Layers < 1 {
		return fmt.Errorf("board: layers %d must be positive", s.Layers)
	}
	if s.Cores < 1 || s.Cores > network.MaxCores {
		return fmt.Errorf("board: cores %d out of range 1..%d", s.Cores, network.MaxCores)
	}
	if s.Kind == KindHexagonal && s.WrapAround {
		return fmt.Errorf("board: hexagonal boards cannot wrap around")
	}
	return nil
}

// Build constructs the network described by s.
func Build(s Spec) (*network.Network, error) {
	s.SetDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Kind {
	case KindHexagonal:
		return Hexagonal(s.Layers, s.Cores)
	case KindTorus:
		return MultiBoardTorus(s.Width, s.Height, s.Layers, s.Cores)
	default:
		return Rectangular(s.Width, s.Height, s.WrapAround, s.Cores)
	}
}

// Describe returns a one-line summary such as "torus 1x1 (4 layers)".
func (s Spec) Describe() string {
	switch s.Kind {
	case KindHexagonal:
		return fmt.Sprintf("hexagonal (%d layers)", s.Layers)
	case KindTorus:
		return fmt.Sprintf("torus %dx%d (%d layers)", s.Width, s.Height, s.Layers)
	}
	if s.WrapAround {
		return fmt.Sprintf("rectangular %dx%d (wrapped)", s.Width, s.Height)
	}
	return fmt.Sprintf("rectangular %dx%d", s.Width, s.Height)
}

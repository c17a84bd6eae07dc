// Package qpoints models the q-point sampling handed to the preparation
// core. Only uniform meshes with an exactly zero offset are supported;
// explicit point lists and shifted meshes are representable so that callers
// receive the two distinguishable unsupported-feature errors instead of a
// silent approximation.
package qpoints

import (
	"fmt"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/params"
)

// Spec describes a q-point sampling of the Brillouin zone.
type Spec interface {
	isSpec()
}

// Mesh is a uniform sampling: three positive counts plus an offset.
type Mesh struct {
	Counts [3]int
	Offset [3]float64
}

func (Mesh) isSpec() {}

// List is an explicit enumeration of q-points. uscf.x input generation does
// not support it.
type List struct {
	Points [][3]float64
}

func (List) isSpec() {}

// Resolve extracts the uniform mesh from a spec.
//
// A List yields the explicit-q-points error, a Mesh with any non-zero offset
// component yields the distinct offset error, and non-positive counts are a
// validation error. Offsets are compared against zero exactly; a nearly-zero
// offset is still a shifted mesh.
func Resolve(spec Spec) (Mesh, error) {
	switch s := spec.(type) {
	case Mesh:
		for _, off := range s.Offset {
			if off != 0 {
				return Mesh{}, errors.NonZeroQpointOffset(s.Offset)
			}
		}
		for i, n := range s.Counts {
			if n <= 0 {
				return Mesh{}, errors.Validation(
					fmt.Sprintf("q-point mesh counts must be positive, got %d in component %d", n, i+1))
			}
		}

		return s, nil
	case List:
		return Mesh{}, errors.ExplicitQpoints()
	case nil:
		return Mesh{}, errors.MissingInput("qpoints")
	default:
		return Mesh{}, errors.TypeMismatch("qpoints", "Mesh", spec)
	}
}

// InjectInto writes the three mesh counts into the designated keys of the
// given section, in component order.
func (m Mesh) InjectInto(tree params.Tree, section string, keys [3]string) {
	for i, key := range keys {
		tree.Set(section, key, m.Counts[i])
	}
}

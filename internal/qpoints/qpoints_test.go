package qpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/params"
)

func TestResolveUniformMesh(t *testing.T) {
	mesh, err := Resolve(Mesh{Counts: [3]int{2, 2, 2}})
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 2, 2}, mesh.Counts)
}

func TestResolveRejectsNonZeroOffset(t *testing.T) {
	testCases := []struct {
		name   string
		offset [3]float64
	}{
		{"first component", [3]float64{0.5, 0, 0}},
		{"second component", [3]float64{0, 0.5, 0}},
		{"third component", [3]float64{0, 0, 0.5}},
		{"tiny offset", [3]float64{0, 1e-12, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(Mesh{Counts: [3]int{2, 2, 2}, Offset: tc.offset})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeQpointsOffset))
		})
	}
}

func TestResolveRejectsExplicitList(t *testing.T) {
	_, err := Resolve(List{Points: [][3]float64{{0, 0, 0}, {0.5, 0, 0}}})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeQpointsExplicit))
	// The two unsupported cases must stay distinguishable.
	assert.False(t, errors.HasCode(err, errors.CodeQpointsOffset))
}

func TestResolveRejectsNonPositiveCounts(t *testing.T) {
	_, err := Resolve(Mesh{Counts: [3]int{2, 0, 2}})

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
	assert.Contains(t, err.Error(), "component 2")
}

func TestResolveNilSpec(t *testing.T) {
	_, err := Resolve(nil)

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMissingInput))
}

func TestInjectInto(t *testing.T) {
	tree := params.Tree{}
	mesh := Mesh{Counts: [3]int{4, 4, 1}}

	mesh.InjectInto(tree, "INPUTUSCF", [3]string{"nq1", "nq2", "nq3"})

	v1, _ := tree.Lookup("INPUTUSCF", "nq1")
	v2, _ := tree.Lookup("INPUTUSCF", "nq2")
	v3, _ := tree.Lookup("INPUTUSCF", "nq3")
	assert.Equal(t, 4, v1)
	assert.Equal(t, 4, v2)
	assert.Equal(t, 1, v3)
}

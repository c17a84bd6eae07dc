package document

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/qpoints"
	"github.com/calcforge/uscfprep/internal/uscf"
)

func TestParseScaffold(t *testing.T) {
	doc, err := Parse([]byte(Scaffold))
	require.NoError(t, err)

	assert.Equal(t, "uscf-0001", doc.Calculation)
	assert.Equal(t, "computer-0001", doc.Computer.UUID)
	assert.Equal(t, "code-0001", doc.Code.UUID)
	assert.Equal(t, "pw-0001", doc.Parent.Calculation)
	assert.Equal(t, "/scratch/project/pw-0001", doc.Parent.RemoteFolder.Path)
	assert.Equal(t, []int{2, 2, 2}, doc.Qpoints.Mesh)
	assert.Nil(t, doc.Settings)
}

func TestScaffoldPreparesEndToEnd(t *testing.T) {
	doc, err := Parse([]byte(Scaffold))
	require.NoError(t, err)

	calc, in, _ := doc.Build()
	stage := uscf.NewStage(afero.NewMemMapFs(), "/stage")

	info, err := calc.Prepare(context.Background(), stage, in)
	require.NoError(t, err)

	deck, err := stage.ReadFile(uscf.InputFileName)
	require.NoError(t, err)

	expected := "&INPUTUSCF\n" +
		"  conv_thr =   1.0000000000d-08\n" +
		"  iverbosity = 2\n" +
		"  nq1 = 2\n" +
		"  nq2 = 2\n" +
		"  nq3 = 2\n" +
		"  outdir = './out/'\n" +
		"  prefix = 'aiida'\n" +
		"/\n"
	assert.Equal(t, expected, string(deck))

	assert.Equal(t, "uscf-0001", info.UUID)
	assert.Equal(t, "code-0001", info.Invocation.CodeUUID)
	require.Len(t, info.Plan.RemoteCopy, 1)
	assert.Equal(t, "/scratch/project/pw-0001/out", info.Plan.RemoteCopy[0].SourcePath)
}

func TestLoadFromFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/calc.yml", []byte(Scaffold), 0o644))

	doc, err := Load(fs, "/work/calc.yml")
	require.NoError(t, err)
	assert.Equal(t, "uscf-0001", doc.Calculation)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/work/absent.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestParseInvalidYaml(t *testing.T) {
	_, err := Parse([]byte("calculation: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidateMissingFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Document)
		want   string
	}{
		{"calculation", func(d *Document) { d.Calculation = "" }, "calculation identifier"},
		{"computer", func(d *Document) { d.Computer.UUID = "" }, "computer uuid"},
		{"code", func(d *Document) { d.Code.UUID = "" }, "code uuid"},
		{"parent calculation", func(d *Document) { d.Parent.Calculation = "" }, "parent calculation"},
		{"remote folder uuid", func(d *Document) { d.Parent.RemoteFolder.UUID = "" }, "remote folder uuid"},
		{"remote folder path", func(d *Document) { d.Parent.RemoteFolder.Path = "" }, "remote folder path"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse([]byte(Scaffold))
			require.NoError(t, err)
			tc.mutate(doc)

			err = doc.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateQpointShape(t *testing.T) {
	doc, err := Parse([]byte(Scaffold))
	require.NoError(t, err)

	doc.Qpoints.Mesh = []int{2, 2}
	err = doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "three counts")

	doc.Qpoints.Mesh = []int{2, 2, 2}
	doc.Qpoints.Offset = []float64{0.5}
	err = doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "three components")

	doc.Qpoints.Offset = nil
	doc.Qpoints.List = [][]float64{{0, 0, 0}}
	err = doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both a mesh and an explicit list")
}

func TestQpointSpecMesh(t *testing.T) {
	doc := &Document{
		Qpoints: QpointsSpec{Mesh: []int{4, 4, 2}, Offset: []float64{0, 0, 0.5}},
	}

	spec := doc.QpointSpec()
	mesh, ok := spec.(qpoints.Mesh)
	require.True(t, ok)
	assert.Equal(t, [3]int{4, 4, 2}, mesh.Counts)
	assert.Equal(t, [3]float64{0, 0, 0.5}, mesh.Offset)
}

func TestQpointSpecList(t *testing.T) {
	doc := &Document{
		Qpoints: QpointsSpec{List: [][]float64{{0, 0, 0}, {0.5, 0, 0}}},
	}

	spec := doc.QpointSpec()
	list, ok := spec.(qpoints.List)
	require.True(t, ok)
	require.Len(t, list.Points, 2)
	assert.Equal(t, [3]float64{0.5, 0, 0}, list.Points[1])
}

func TestQpointSpecAbsent(t *testing.T) {
	doc := &Document{}
	assert.Nil(t, doc.QpointSpec())
}

func TestBuildParentOnDifferentComputer(t *testing.T) {
	raw := strings.Replace(Scaffold,
		"parent:\n  calculation: pw-0001\n",
		"parent:\n  calculation: pw-0001\n  computer:\n    uuid: computer-0002\n    name: elsewhere\n",
		1)

	doc, err := Parse([]byte(raw))
	require.NoError(t, err)

	calc, in, _ := doc.Build()
	_, err = calc.Prepare(context.Background(), uscf.NewStage(afero.NewMemMapFs(), "/stage"), in)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeHostMismatch))
	assert.Contains(t, err.Error(), "elsewhere")
}

func TestBuildCarriesSettings(t *testing.T) {
	doc, err := Parse([]byte(Scaffold))
	require.NoError(t, err)
	doc.Settings = map[string]any{"CMDLINE": []any{"-npool", "4"}}

	calc, in, _ := doc.Build()
	info, err := calc.Prepare(context.Background(), uscf.NewStage(afero.NewMemMapFs(), "/stage"), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"-npool", "4", "-in", "aiida.in"}, info.Invocation.CmdlineParams)
}

func TestBuildExplicitListFailsPreparation(t *testing.T) {
	doc, err := Parse([]byte(Scaffold))
	require.NoError(t, err)
	doc.Qpoints = QpointsSpec{List: [][]float64{{0, 0, 0}}}

	calc, in, _ := doc.Build()
	_, err = calc.Prepare(context.Background(), uscf.NewStage(afero.NewMemMapFs(), "/stage"), in)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeQpointsExplicit))
}

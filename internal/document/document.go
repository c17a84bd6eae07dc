// Package document reads the YAML calculation document the CLI operates
// on: one uscf.x calculation with its code and computer, the parent pw.x
// run with the remote folder it produced, and the raw preparation inputs.
package document

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/nodes"
	"github.com/calcforge/uscfprep/internal/provenance"
	"github.com/calcforge/uscfprep/internal/qpoints"
	"github.com/calcforge/uscfprep/internal/uscf"
)

// ComputerSpec identifies an execution host.
type ComputerSpec struct {
	UUID string `yaml:"uuid"`
	Name string `yaml:"name"`
}

// CodeSpec references the uscf.x executable.
type CodeSpec struct {
	UUID  string `yaml:"uuid"`
	Label string `yaml:"label"`
}

// RemoteFolderSpec locates the parent's output directory on its host.
type RemoteFolderSpec struct {
	UUID string `yaml:"uuid"`
	Path string `yaml:"path"`
}

// ParentSpec describes the upstream pw.x run.
type ParentSpec struct {
	Calculation string `yaml:"calculation"`
	// Computer defaults to the document's computer when omitted. Setting a
	// different host is possible and fails preparation with a host
	// mismatch.
	Computer     *ComputerSpec    `yaml:"computer,omitempty"`
	RemoteFolder RemoteFolderSpec `yaml:"remote_folder"`
}

// QpointsSpec is either a uniform mesh with an optional offset or an
// explicit point list. Both parse so later validation can reject the list
// with its own error.
type QpointsSpec struct {
	Mesh   []int       `yaml:"mesh,omitempty"`
	Offset []float64   `yaml:"offset,omitempty"`
	List   [][]float64 `yaml:"list,omitempty"`
}

// Document is one YAML calculation document.
type Document struct {
	Calculation string                    `yaml:"calculation"`
	Computer    ComputerSpec              `yaml:"computer"`
	Code        CodeSpec                  `yaml:"code"`
	Parent      ParentSpec                `yaml:"parent"`
	Parameters  map[string]map[string]any `yaml:"parameters"`
	Qpoints     QpointsSpec               `yaml:"qpoints"`
	Settings    map[string]any            `yaml:"settings,omitempty"`
}

// Load reads and parses the document at path.
func Load(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calculation document: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML calculation document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse calculation document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the fields preparation cannot run without. Parameter and
// settings content is validated during preparation itself.
func (d *Document) Validate() error {
	if d.Calculation == "" {
		return errors.Config("document is missing the calculation identifier")
	}
	if d.Computer.UUID == "" {
		return errors.Config("document is missing the computer uuid")
	}
	if d.Code.UUID == "" {
		return errors.Config("document is missing the code uuid")
	}
	if d.Parent.Calculation == "" {
		return errors.Config("document is missing the parent calculation")
	}
	if d.Parent.RemoteFolder.UUID == "" {
		return errors.Config("document is missing the parent remote folder uuid")
	}
	if d.Parent.RemoteFolder.Path == "" {
		return errors.Config("document is missing the parent remote folder path")
	}
	if len(d.Qpoints.Mesh) > 0 && len(d.Qpoints.List) > 0 {
		return errors.Config("qpoints cannot be both a mesh and an explicit list")
	}
	if len(d.Qpoints.Mesh) > 0 && len(d.Qpoints.Mesh) != 3 {
		return errors.Config("qpoints mesh needs exactly three counts")
	}
	if len(d.Qpoints.Offset) > 0 && len(d.Qpoints.Offset) != 3 {
		return errors.Config("qpoints offset needs exactly three components")
	}
	return nil
}

// QpointSpec converts the q-points block into a typed specification. A
// document with neither a mesh nor a list yields nil, which preparation
// reports as a missing input.
func (d *Document) QpointSpec() qpoints.Spec {
	if len(d.Qpoints.List) > 0 {
		list := qpoints.List{Points: make([][3]float64, 0, len(d.Qpoints.List))}
		for _, p := range d.Qpoints.List {
			var point [3]float64
			copy(point[:], p)
			list.Points = append(list.Points, point)
		}
		return list
	}

	if len(d.Qpoints.Mesh) != 3 {
		return nil
	}
	mesh := qpoints.Mesh{
		Counts: [3]int{d.Qpoints.Mesh[0], d.Qpoints.Mesh[1], d.Qpoints.Mesh[2]},
	}
	if len(d.Qpoints.Offset) == 3 {
		copy(mesh.Offset[:], d.Qpoints.Offset)
	}
	return mesh
}

// Build materializes the document: the provenance graph holding the parent
// pw.x run and its remote folder, the calculation, and its typed inputs.
func (d *Document) Build() (*uscf.Calculation, uscf.Inputs, *provenance.Graph) {
	computer := nodes.Computer{UUID: d.Computer.UUID, Name: d.Computer.Name}

	parentComputer := computer
	if d.Parent.Computer != nil {
		parentComputer = nodes.Computer{
			UUID: d.Parent.Computer.UUID,
			Name: d.Parent.Computer.Name,
		}
	}

	graph := provenance.NewGraph()
	parent := &nodes.PwCalculation{ID: d.Parent.Calculation, Machine: parentComputer}
	folder := &nodes.RemoteFolder{
		UUID:     d.Parent.RemoteFolder.UUID,
		Computer: parentComputer,
		Path:     d.Parent.RemoteFolder.Path,
	}
	graph.RecordOutput(parent, folder)

	calc := uscf.NewCalculation(d.Calculation, computer, graph, graph)
	in := uscf.Inputs{
		Code:         nodes.Code{UUID: d.Code.UUID, Label: d.Code.Label},
		Parameters:   d.Parameters,
		Qpoints:      d.QpointSpec(),
		ParentFolder: folder,
		Settings:     d.Settings,
	}
	return calc, in, graph
}

// Scaffold is the starter document written by the init command.
const Scaffold = `# uscfprep calculation document
calculation: uscf-0001
computer:
  uuid: computer-0001
  name: cluster
code:
  uuid: code-0001
  label: uscf-6.3
parent:
  calculation: pw-0001
  remote_folder:
    uuid: remote-0001
    path: /scratch/project/pw-0001
parameters:
  INPUTUSCF:
    conv_thr: 1.0e-08
qpoints:
  mesh: [2, 2, 2]
  offset: [0, 0, 0]
# settings:
#   CMDLINE: ["-npool", "4"]
#   PARENT_CALC_OUT_SUBFOLDER: "./out/"
`

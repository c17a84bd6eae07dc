// Package uscf prepares the inputs of a uscf.x Hubbard calculation: it
// normalizes the caller's parameters, validates the q-point mesh and the
// parent calculation, writes the namelist input deck into a staging folder
// and describes the submission to the scheduling collaborator as a CalcInfo.
package uscf

import (
	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/logging"
	"github.com/calcforge/uscfprep/internal/nodes"
	"github.com/calcforge/uscfprep/internal/params"
	"github.com/calcforge/uscfprep/internal/provenance"
	"github.com/calcforge/uscfprep/internal/qpoints"
)

const (
	// Prefix is the fixed file prefix shared with the parent pw.x run.
	Prefix = "aiida"
	// InputFileName is the name of the generated input deck.
	InputFileName = "aiida.in"
	// OutputFileName is the stdout capture name and the first retrieved file.
	OutputFileName = "aiida.out"
	// OutputChiSuffix names the chi matrix file written by uscf.x.
	OutputChiSuffix = ".chi.dat"
	// OutputHubbardSuffix names the Hubbard U file written by uscf.x.
	OutputHubbardSuffix = ".Hubbard_U.dat"
	// OutputSubfolder is the working subfolder uscf.x reads and writes.
	OutputSubfolder = "./out/"
	// ParserName identifies the output parser for the retrieved files.
	ParserName = "quantumespresso.uscf"
)

// Settings keys recognized during preparation. Settings keys are folded to
// upper case before recognition; anything left after the recognized keys are
// consumed fails the preparation.
const (
	// SettingParentOutSubfolder overrides the parent's output subfolder.
	SettingParentOutSubfolder = "PARENT_CALC_OUT_SUBFOLDER"
	// SettingCmdline prepends extra command-line arguments to the invocation.
	SettingCmdline = "CMDLINE"
)

const namelistMain = "INPUTUSCF"

// CompulsoryNamelists lists the namelists of the input deck in the order
// uscf.x expects them.
var CompulsoryNamelists = []string{namelistMain}

// BlockedKeywords are the keys only the plugin may set. The slice order is
// the order conflicts are reported in.
var BlockedKeywords = []params.ReservedKey{
	{Section: namelistMain, Key: "iverbosity"},
	{Section: namelistMain, Key: "prefix"},
	{Section: namelistMain, Key: "outdir"},
	{Section: namelistMain, Key: "nq1"},
	{Section: namelistMain, Key: "nq2"},
	{Section: namelistMain, Key: "nq3"},
	{Section: namelistMain, Key: "conv_thr_chi"},
}

// Inputs carries the typed input objects of one preparation call.
type Inputs struct {
	// Code references the uscf.x executable to invoke.
	Code nodes.Code
	// Parameters is the raw two-level namelist mapping, case not yet folded.
	Parameters map[string]map[string]any
	// Qpoints is the q-point specification. Only uniform zero-offset meshes
	// are accepted.
	Qpoints qpoints.Spec
	// ParentFolder is the remote output folder of the parent pw.x run.
	ParentFolder *nodes.RemoteFolder
	// Settings holds optional control keys, recognized ones are consumed.
	Settings map[string]any
}

// Calculation is one uscf.x run being prepared. It reads the provenance
// graph to validate its parent and records the parent link through the
// Linker collaborator.
type Calculation struct {
	id      string
	machine nodes.Computer
	graph   provenance.Reader
	links   provenance.Linker
	log     logging.Logger
}

// NewCalculation creates a calculation on machine with the given
// provenance collaborators.
func NewCalculation(id string, machine nodes.Computer, graph provenance.Reader, links provenance.Linker) *Calculation {
	return &Calculation{
		id:      id,
		machine: machine,
		graph:   graph,
		links:   links,
		log:     logging.NewNop(),
	}
}

// WithLogger installs a logger and returns the calculation for chaining.
func (c *Calculation) WithLogger(log logging.Logger) *Calculation {
	c.log = log.WithComponent("uscf")
	return c
}

// UUID returns the stable identity of the calculation.
func (c *Calculation) UUID() string { return c.id }

// Kind returns KindUscf.
func (c *Calculation) Kind() nodes.CalcKind { return nodes.KindUscf }

// Computer returns the host the calculation will run on.
func (c *Calculation) Computer() nodes.Computer { return c.machine }

// UseParentCalculation resolves the single remote output folder of parent
// and links it as the parent of this calculation. The parent must be a pw.x
// run with exactly one remote folder among its outputs.
func (c *Calculation) UseParentCalculation(parent nodes.CalcNode) (*nodes.RemoteFolder, error) {
	if parent == nil {
		return nil, errors.MissingInput("parent calculation")
	}
	if parent.Kind() != nodes.KindPw {
		return nil, errors.TypeMismatch("parent calculation", string(nodes.KindPw), parent)
	}

	folder, err := provenance.SingleRemoteOutput(c.graph, parent.UUID())
	if err != nil {
		return nil, err
	}

	if err := c.SetParentRemoteFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// SetParentRemoteFolder links folder as the parent remote folder of this
// calculation. The link is written once; any second call fails.
func (c *Calculation) SetParentRemoteFolder(folder *nodes.RemoteFolder) error {
	if folder == nil {
		return errors.MissingInput("parent_folder")
	}
	return c.links.LinkParent(c.id, folder)
}

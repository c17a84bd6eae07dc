// Package nodes provides the typed value objects exchanged with the host
// runtime: executable references, computers, remote folders, and the minimal
// view of upstream calculations. This package contains shared types to avoid
// circular dependencies between the preparation core and its collaborators.
package nodes

import (
	"github.com/calcforge/uscfprep/internal/errors"
)

// Computer identifies an execution host. Calculations linked as parent and
// child must share a Computer, compared by UUID.
type Computer struct {
	// UUID is the stable identity of the host
	UUID string
	// Name is the human-readable label used in error messages
	Name string
}

// Code references the executable to run. The preparation core treats it as
// opaque; only the UUID travels into the invocation descriptor.
type Code struct {
	// UUID is the stable identity of the code
	UUID string
	// Label is the human-readable name (e.g. "uscf-6.3")
	Label string
}

// RemoteFolder is a handle to a directory on a remote computer produced by a
// prior calculation.
type RemoteFolder struct {
	// UUID is the stable identity of the folder node
	UUID string
	// Computer is the host the folder lives on
	Computer Computer
	// Path is the absolute directory path on that host
	Path string
}

// CalcKind discriminates calculation node types in the provenance graph.
type CalcKind string

const (
	// KindPw marks a pw.x ground-state calculation
	KindPw CalcKind = "quantumespresso.pw"
	// KindUscf marks a uscf.x Hubbard calculation
	KindUscf CalcKind = "quantumespresso.uscf"
)

// CalcNode is the minimal view of a calculation in the provenance graph.
type CalcNode interface {
	// UUID returns the stable identity of the calculation
	UUID() string
	// Kind returns the calculation kind
	Kind() CalcKind
	// Computer returns the host the calculation ran (or will run) on
	Computer() Computer
}

// OutSubfolderCarrier is implemented by calculations that declare a fixed
// output subfolder relative to their remote working directory.
type OutSubfolderCarrier interface {
	OutSubfolder() string
}

// OutputFolderResolver is the legacy way of obtaining the output subfolder,
// consulted only when the fixed attribute is unavailable.
type OutputFolderResolver interface {
	OutputFolder() (string, error)
}

// DefaultOutputFolder resolves the default output subfolder of a producer
// calculation. The fixed OutSubfolder attribute wins; the OutputFolder method
// is tried only when the attribute is absent. The two are not assumed to
// agree. A calculation providing neither is a configuration error.
func DefaultOutputFolder(c CalcNode) (string, error) {
	if carrier, ok := c.(OutSubfolderCarrier); ok {
		if sub := carrier.OutSubfolder(); sub != "" {
			return sub, nil
		}
	}
	if resolver, ok := c.(OutputFolderResolver); ok {
		sub, err := resolver.OutputFolder()
		if err != nil {
			return "", errors.NoOutputFolder(c.UUID()).WithCause(err)
		}
		if sub != "" {
			return sub, nil
		}
	}

	return "", errors.NoOutputFolder(c.UUID())
}

// PwCalculation is an upstream pw.x run whose remote output the USCF
// calculation consumes.
type PwCalculation struct {
	// ID is the stable identity of the calculation
	ID string
	// Machine is the computer the calculation ran on
	Machine Computer
}

// UUID returns the stable identity of the calculation.
func (c *PwCalculation) UUID() string { return c.ID }

// Kind returns KindPw.
func (c *PwCalculation) Kind() CalcKind { return KindPw }

// Computer returns the host the calculation ran on.
func (c *PwCalculation) Computer() Computer { return c.Machine }

// OutSubfolder returns the fixed output subfolder pw.x writes into.
func (c *PwCalculation) OutSubfolder() string { return "./out/" }

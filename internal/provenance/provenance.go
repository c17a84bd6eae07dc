package provenance

import (
	"sync"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/nodes"
)

// Reader resolves creation edges of a provenance graph.
type Reader interface {
	// Producers returns the calculations recorded as creators of folder.
	Producers(folder *nodes.RemoteFolder) []nodes.CalcNode

	// RemoteOutputs returns the remote folders recorded as outputs of the
	// calculation with the given UUID.
	RemoteOutputs(calcUUID string) []*nodes.RemoteFolder
}

// Linker records the parent remote folder of a calculation. The link is
// written once at preparation time and never replaced.
type Linker interface {
	// Parent returns the linked parent folder of the calculation, if any.
	Parent(calcUUID string) (*nodes.RemoteFolder, bool)

	// LinkParent links folder as the parent of the calculation. A second
	// call for the same calculation fails, even with the same folder.
	LinkParent(calcUUID string, folder *nodes.RemoteFolder) error
}

// Graph is an in-memory provenance store implementing Reader and Linker.
type Graph struct {
	mutex     sync.RWMutex
	producers map[string][]nodes.CalcNode
	outputs   map[string][]*nodes.RemoteFolder
	parents   map[string]*nodes.RemoteFolder
}

// NewGraph creates an empty provenance graph.
func NewGraph() *Graph {
	return &Graph{
		producers: make(map[string][]nodes.CalcNode),
		outputs:   make(map[string][]*nodes.RemoteFolder),
		parents:   make(map[string]*nodes.RemoteFolder),
	}
}

// RecordOutput registers folder as an output created by calc. Both
// directions of the edge become visible to Reader lookups.
func (g *Graph) RecordOutput(calc nodes.CalcNode, folder *nodes.RemoteFolder) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.producers[folder.UUID] = append(g.producers[folder.UUID], calc)
	g.outputs[calc.UUID()] = append(g.outputs[calc.UUID()], folder)
}

// Producers returns the calculations recorded as creators of folder.
func (g *Graph) Producers(folder *nodes.RemoteFolder) []nodes.CalcNode {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	result := make([]nodes.CalcNode, len(g.producers[folder.UUID]))
	copy(result, g.producers[folder.UUID])
	return result
}

// RemoteOutputs returns the remote folders recorded as outputs of the
// calculation with the given UUID.
func (g *Graph) RemoteOutputs(calcUUID string) []*nodes.RemoteFolder {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	result := make([]*nodes.RemoteFolder, len(g.outputs[calcUUID]))
	copy(result, g.outputs[calcUUID])
	return result
}

// Parent returns the linked parent folder of the calculation, if any.
func (g *Graph) Parent(calcUUID string) (*nodes.RemoteFolder, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	folder, exists := g.parents[calcUUID]
	return folder, exists
}

// LinkParent links folder as the parent of the calculation.
func (g *Graph) LinkParent(calcUUID string, folder *nodes.RemoteFolder) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.parents[calcUUID]; exists {
		return errors.AlreadyLinked(calcUUID)
	}

	g.parents[calcUUID] = folder
	return nil
}

// SingleProducer returns the unique calculation recorded as the creator of
// folder. Zero producers is a not-found error, more than one a uniqueness
// error.
func SingleProducer(r Reader, folder *nodes.RemoteFolder) (nodes.CalcNode, error) {
	producers := r.Producers(folder)
	switch len(producers) {
	case 0:
		return nil, errors.ParentNotFound(folder.Path)
	case 1:
		return producers[0], nil
	default:
		return nil, errors.ParentAmbiguous(folder.Path, len(producers))
	}
}

// SingleRemoteOutput returns the unique remote folder produced by the
// calculation with the given UUID.
func SingleRemoteOutput(r Reader, calcUUID string) (*nodes.RemoteFolder, error) {
	outputs := r.RemoteOutputs(calcUUID)
	switch len(outputs) {
	case 0:
		return nil, errors.RemoteOutputMissing(calcUUID)
	case 1:
		return outputs[0], nil
	default:
		return nil, errors.RemoteOutputAmbiguous(calcUUID, len(outputs))
	}
}

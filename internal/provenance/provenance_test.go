package provenance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/nodes"
)

var lumi = nodes.Computer{UUID: "c-1", Name: "lumi"}

func newFolder(id string) *nodes.RemoteFolder {
	return &nodes.RemoteFolder{
		UUID:     id,
		Computer: lumi,
		Path:     "/scratch/" + id,
	}
}

func TestRecordOutputRoundTrip(t *testing.T) {
	graph := NewGraph()
	pw := &nodes.PwCalculation{ID: "pw-1", Machine: lumi}
	folder := newFolder("rf-1")

	graph.RecordOutput(pw, folder)

	producers := graph.Producers(folder)
	require.Len(t, producers, 1)
	assert.Equal(t, "pw-1", producers[0].UUID())

	outputs := graph.RemoteOutputs("pw-1")
	require.Len(t, outputs, 1)
	assert.Equal(t, "rf-1", outputs[0].UUID)
}

func TestReaderReturnsCopies(t *testing.T) {
	graph := NewGraph()
	pw := &nodes.PwCalculation{ID: "pw-1", Machine: lumi}
	folder := newFolder("rf-1")
	graph.RecordOutput(pw, folder)

	producers := graph.Producers(folder)
	producers[0] = nil

	again := graph.Producers(folder)
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])
}

func TestSingleProducer(t *testing.T) {
	graph := NewGraph()
	folder := newFolder("rf-1")

	_, err := SingleProducer(graph, folder)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParentNotFound))

	graph.RecordOutput(&nodes.PwCalculation{ID: "pw-1", Machine: lumi}, folder)
	producer, err := SingleProducer(graph, folder)
	require.NoError(t, err)
	assert.Equal(t, "pw-1", producer.UUID())

	graph.RecordOutput(&nodes.PwCalculation{ID: "pw-2", Machine: lumi}, folder)
	_, err = SingleProducer(graph, folder)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParentAmbiguous))
	assert.Contains(t, err.Error(), "2 producing calculations")
}

func TestSingleRemoteOutput(t *testing.T) {
	graph := NewGraph()
	pw := &nodes.PwCalculation{ID: "pw-1", Machine: lumi}

	_, err := SingleRemoteOutput(graph, pw.UUID())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParentNotFound))
	assert.Contains(t, err.Error(), "pw-1")

	graph.RecordOutput(pw, newFolder("rf-1"))
	folder, err := SingleRemoteOutput(graph, pw.UUID())
	require.NoError(t, err)
	assert.Equal(t, "rf-1", folder.UUID)

	graph.RecordOutput(pw, newFolder("rf-2"))
	_, err = SingleRemoteOutput(graph, pw.UUID())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeParentAmbiguous))
}

func TestLinkParentOnce(t *testing.T) {
	graph := NewGraph()
	folder := newFolder("rf-1")

	_, linked := graph.Parent("uscf-1")
	assert.False(t, linked)

	require.NoError(t, graph.LinkParent("uscf-1", folder))

	got, linked := graph.Parent("uscf-1")
	require.True(t, linked)
	assert.Equal(t, "rf-1", got.UUID)
}

func TestLinkParentTwiceFails(t *testing.T) {
	graph := NewGraph()
	folder := newFolder("rf-1")
	require.NoError(t, graph.LinkParent("uscf-1", folder))

	// A second attempt fails even with the identical folder.
	err := graph.LinkParent("uscf-1", folder)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAlreadyLinked))

	err = graph.LinkParent("uscf-1", newFolder("rf-2"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAlreadyLinked))

	got, linked := graph.Parent("uscf-1")
	require.True(t, linked)
	assert.Equal(t, "rf-1", got.UUID, "first link must survive failed relink attempts")
}

func TestLinkParentIndependentCalculations(t *testing.T) {
	graph := NewGraph()

	for i := 0; i < 3; i++ {
		calc := fmt.Sprintf("uscf-%d", i)
		require.NoError(t, graph.LinkParent(calc, newFolder(fmt.Sprintf("rf-%d", i))))
	}

	for i := 0; i < 3; i++ {
		folder, linked := graph.Parent(fmt.Sprintf("uscf-%d", i))
		require.True(t, linked)
		assert.Equal(t, fmt.Sprintf("rf-%d", i), folder.UUID)
	}
}

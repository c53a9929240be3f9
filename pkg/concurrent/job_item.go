package concurrent

import (
	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/golang/geo/r3"
)

// DiscretizeJobItem asks for the lane center points of an edge at the offsets S.
type DiscretizeJobItem struct {
	Edge graph.EdgeID
	S    []float64
}

// LaneSamples is the result of a DiscretizeJobItem.
type LaneSamples struct {
	Edge   graph.EdgeID
	S      []float64
	Points []r3.Vector
}

// CompressJobItem is a raw value to be compressed and stored under Key.
type CompressJobItem struct {
	Key   string
	Value []byte
}

type CompressResult struct {
	Key   string
	Value []byte
	Err   error
}

type JobI interface {
	DiscretizeJobItem | CompressJobItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G

package tsngen

// route.go resolves a deterministic route for every stream of a scenario.
// The approach, as in mrnes, is to convert the topology into the data
// structures of the gonum graph package and lean on its built-in path
// discovery.  Weighting each link by 1 makes a shortest path minimize hop
// count.  Where several shortest paths tie, the one whose device identifier
// sequence is lexicographically least is selected, which keeps routing
// independent of map iteration order and reproducible across runs.

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// devPair keys the link registry by the numeric identities of a link's two
// endpoints, smaller first.
type devPair struct {
	lo, hi int
}

// topoGraph bundles the gonum representation of an identified topology with
// the lookups needed to turn a discovered node sequence back into links.
type topoGraph struct {
	g          *simple.UndirectedGraph
	paths      path.AllShortest
	devByNumID map[int]TopoDev
	linkByPair map[devPair]*LinkFrame
}

// buildTopoGraph converts the identified topology into graph form and runs
// the all-pairs shortest path analysis once; individual stream resolutions
// below are lookups against the cached result.
func buildTopoGraph(tcf *TopoCfgFrame) *topoGraph {
	tg := new(topoGraph)
	tg.g = simple.NewUndirectedGraph()
	tg.devByNumID = make(map[int]TopoDev)
	tg.linkByPair = make(map[devPair]*LinkFrame)

	for _, swtch := range tcf.Switches {
		tg.devByNumID[swtch.NumID] = swtch
		tg.g.AddNode(simple.Node(swtch.NumID))
	}
	for _, esf := range tcf.EndSys {
		tg.devByNumID[esf.NumID] = esf
		tg.g.AddNode(simple.Node(esf.NumID))
	}

	for _, lf := range tcf.Links {
		srcID := devNumID(lf.SrcPort.Device)
		dstID := devNumID(lf.DstPort.Device)
		tg.g.SetEdge(simple.Edge{F: simple.Node(srcID), T: simple.Node(dstID)})
		tg.linkByPair[orderPair(srcID, dstID)] = lf
	}

	tg.paths = path.DijkstraAllPaths(tg.g)

	return tg
}

func devNumID(dev TopoDev) int {
	switch d := dev.(type) {
	case *SwitchFrame:
		return d.NumID
	case *EndSysFrame:
		return d.NumID
	}

	return -1
}

func orderPair(a, b int) devPair {
	if a < b {
		return devPair{lo: a, hi: b}
	}

	return devPair{lo: b, hi: a}
}

// leastNodeSeq selects from a set of equal-length node sequences the one
// that is lexicographically least by node identity.
func leastNodeSeq(seqs [][]graph.Node) []graph.Node {
	best := seqs[0]
	for _, seq := range seqs[1:] {
		for idx := range seq {
			if seq[idx].ID() < best[idx].ID() {
				best = seq
				break
			}
			if seq[idx].ID() > best[idx].ID() {
				break
			}
		}
	}

	return best
}

// resolveOne computes the link sequence of a single stream's route.
func (tg *topoGraph) resolveOne(strm *StreamFrame) ([]*LinkFrame, error) {
	seqs, weight := tg.paths.AllBetween(int64(strm.Src.NumID), int64(strm.Dst.NumID))
	if len(seqs) == 0 || math.IsInf(weight, 1) {
		return nil, &UnreachableError{Stream: strm.Name, Src: strm.Src.Name, Dst: strm.Dst.Name}
	}

	nodeSeq := leastNodeSeq(seqs)

	route := make([]*LinkFrame, 0, len(nodeSeq)-1)
	for idx := 1; idx < len(nodeSeq); idx += 1 {
		pair := orderPair(int(nodeSeq[idx-1].ID()), int(nodeSeq[idx].ID()))
		lf, present := tg.linkByPair[pair]
		if !present {
			// the path names an edge the topology does not hold, which can
			// only mean an earlier stage corrupted the graph
			return nil, &UnreachableError{Stream: strm.Name, Src: strm.Src.Name, Dst: strm.Dst.Name}
		}
		route = append(route, lf)
	}

	return route, nil
}

// ResolveRoutes computes and stores the route of every stream.  Connectivity
// validation makes unreachability impossible in principle, but topology and
// traffic generation are separate stages, so the absence of a path is still
// checked and surfaced rather than assumed away.
func ResolveRoutes(tcf *TopoCfgFrame, streams []*StreamFrame) error {
	tg := buildTopoGraph(tcf)

	for _, strm := range streams {
		route, rerr := tg.resolveOne(strm)
		if rerr != nil {
			return rerr
		}
		strm.Route = route
	}

	return nil
}

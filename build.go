package tsngen

// build.go constructs the abstract topology of a test scenario: a set of
// switches joined by links according to one of a fixed set of generator
// families, with a configured number of end systems attached to each switch.

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
)

// NetworkFamily names an edge-construction rule for the switch subgraph.
type NetworkFamily string

const (
	// FamilyRing joins the switches in a single cycle.
	FamilyRing NetworkFamily = "ring"

	// FamilyPath joins the switches in a simple chain, no wraparound edge.
	FamilyPath NetworkFamily = "path"

	// FamilyMesh pairwise connects every switch (a complete graph).  When a
	// positive Degree parameter is given the family instead builds a
	// circulant bounded-degree mesh: each switch links to its Degree/2
	// nearest neighbors on either side of a ring ordering.
	FamilyMesh NetworkFamily = "mesh"

	// FamilyGeometric places the switches uniformly in the unit square and
	// joins every pair within the Radius parameter of each other.
	FamilyGeometric NetworkFamily = "random-geometric"

	// FamilyBinomial includes each candidate switch pair independently with
	// probability EdgeProb.
	FamilyBinomial NetworkFamily = "binomial"

	// FamilyExpDegree derives a per-pair edge probability from a target
	// expected-degree sequence, in the Chung-Lu style.  The configured
	// sequence is cycled when shorter than the switch count.
	FamilyExpDegree NetworkFamily = "expected-degree"
)

// NetworkFamilies lists every supported family.
var NetworkFamilies = []NetworkFamily{FamilyRing, FamilyPath, FamilyMesh,
	FamilyGeometric, FamilyBinomial, FamilyExpDegree}

// KnownFamily reports whether the offered name is a supported family.
// "cycle" is accepted as an alias for ring.
func KnownFamily(name string) (NetworkFamily, bool) {
	if name == "cycle" {
		return FamilyRing, true
	}
	for _, family := range NetworkFamilies {
		if string(family) == name {
			return family, true
		}
	}

	return "", false
}

// Stochastic reports whether the family draws random numbers during
// construction, and so needs a seed and may warrant regeneration retries.
func (family NetworkFamily) Stochastic() bool {
	return family == FamilyGeometric || family == FamilyBinomial || family == FamilyExpDegree
}

// BldParams carries the family-specific knobs of the topology builder.
// A family reads only the fields it declares; the rest are ignored.
type BldParams struct {
	// Radius is the reachability radius of the random-geometric family
	Radius float64

	// EdgeProb is the per-pair edge probability of the binomial family
	EdgeProb float64

	// ExpDegree is the target expected-degree sequence of the
	// expected-degree family, cycled over the switches in order
	ExpDegree []float64

	// Degree, when positive, selects the bounded-degree mesh variant
	Degree int
}

// checkBldParams vets the size parameters common to every family and the
// family-specific parameters of the one selected.
func checkBldParams(family NetworkFamily, numSwitches, esPerSwitch int, params BldParams) error {
	if numSwitches < 1 {
		return &InvalidParameterError{Param: "numSwitches",
			Value: fmt.Sprintf("%d", numSwitches), Reason: "must be at least 1"}
	}
	if esPerSwitch < 0 {
		return &InvalidParameterError{Param: "esPerSwitch",
			Value: fmt.Sprintf("%d", esPerSwitch), Reason: "must be non-negative"}
	}

	switch family {
	case FamilyGeometric:
		if !(params.Radius > 0.0) {
			return &InvalidParameterError{Param: "radius",
				Value: fmt.Sprintf("%g", params.Radius), Reason: "must be positive"}
		}
	case FamilyBinomial:
		if params.EdgeProb < 0.0 || params.EdgeProb > 1.0 {
			return &InvalidParameterError{Param: "edgeProb",
				Value: fmt.Sprintf("%g", params.EdgeProb), Reason: "must lie in [0,1]"}
		}
	case FamilyExpDegree:
		if len(params.ExpDegree) == 0 {
			return &InvalidParameterError{Param: "expDegree",
				Value: "[]", Reason: "sequence must not be empty"}
		}
		for _, w := range params.ExpDegree {
			if w < 0.0 {
				return &InvalidParameterError{Param: "expDegree",
					Value: fmt.Sprintf("%g", w), Reason: "sequence entries must be non-negative"}
			}
		}
	case FamilyMesh:
		if params.Degree < 0 {
			return &InvalidParameterError{Param: "degree",
				Value: fmt.Sprintf("%d", params.Degree), Reason: "must be non-negative"}
		}
	case FamilyRing, FamilyPath:
		// no family-specific parameters
	default:
		return &InvalidParameterError{Param: "family",
			Value: string(family), Reason: "not a supported network family"}
	}

	return nil
}

// switchPair identifies a candidate edge between the switches with the
// given build-order indices, i < j always.
type switchPair struct {
	i, j int
}

// familyEdges computes the edge set of the switch subgraph for the selected
// family.  Candidate pairs are visited in ascending (i,j) order, so for the
// stochastic families the draws consumed from rng depend only on the switch
// count, never on earlier outcomes, and a fixed stream reproduces the edge
// set exactly.
func familyEdges(family NetworkFamily, numSwitches int, params BldParams,
	rng *rngstream.RngStream) []switchPair {

	edges := make([]switchPair, 0)

	switch family {
	case FamilyRing:
		// consecutive switches mod numSwitches; for one switch the modular
		// edge would be a self-loop and for two the wraparound would
		// duplicate, both suppressed here
		for i := 0; i < numSwitches; i += 1 {
			j := (i + 1) % numSwitches
			if j == i || j < i {
				continue
			}
			edges = append(edges, switchPair{i: i, j: j})
		}
		if numSwitches > 2 {
			edges = append(edges, switchPair{i: 0, j: numSwitches - 1})
		}

	case FamilyPath:
		for i := 0; i < numSwitches-1; i += 1 {
			edges = append(edges, switchPair{i: i, j: i + 1})
		}

	case FamilyMesh:
		if params.Degree == 0 {
			// complete graph
			for i := 0; i < numSwitches; i += 1 {
				for j := i + 1; j < numSwitches; j += 1 {
					edges = append(edges, switchPair{i: i, j: j})
				}
			}
		} else {
			// circulant variant: switch i links to its Degree/2 nearest
			// neighbors on either side of the ring ordering
			reach := params.Degree / 2
			if reach < 1 {
				reach = 1
			}
			seen := make(map[switchPair]bool)
			for i := 0; i < numSwitches; i += 1 {
				for d := 1; d <= reach; d += 1 {
					j := (i + d) % numSwitches
					lo, hi := i, j
					if hi < lo {
						lo, hi = hi, lo
					}
					if lo == hi {
						continue
					}
					pair := switchPair{i: lo, j: hi}
					if !seen[pair] {
						seen[pair] = true
						edges = append(edges, pair)
					}
				}
			}
		}

	case FamilyGeometric:
		// place every switch in the unit square, then join pairs within
		// the reachability radius
		xpos := make([]float64, numSwitches)
		ypos := make([]float64, numSwitches)
		for i := 0; i < numSwitches; i += 1 {
			xpos[i] = rng.RandU01()
			ypos[i] = rng.RandU01()
		}
		for i := 0; i < numSwitches; i += 1 {
			for j := i + 1; j < numSwitches; j += 1 {
				dx := xpos[i] - xpos[j]
				dy := ypos[i] - ypos[j]
				if math.Sqrt(dx*dx+dy*dy) <= params.Radius {
					edges = append(edges, switchPair{i: i, j: j})
				}
			}
		}

	case FamilyBinomial:
		for i := 0; i < numSwitches; i += 1 {
			for j := i + 1; j < numSwitches; j += 1 {
				if rng.RandU01() < params.EdgeProb {
					edges = append(edges, switchPair{i: i, j: j})
				}
			}
		}

	case FamilyExpDegree:
		// Chung-Lu: pair (i,j) joined with probability min(1, w_i*w_j/sum_w)
		weights := make([]float64, numSwitches)
		totalWeight := 0.0
		for i := 0; i < numSwitches; i += 1 {
			weights[i] = params.ExpDegree[i%len(params.ExpDegree)]
			totalWeight += weights[i]
		}
		for i := 0; i < numSwitches; i += 1 {
			for j := i + 1; j < numSwitches; j += 1 {
				prob := 1.0
				if totalWeight > 0.0 {
					prob = math.Min(1.0, weights[i]*weights[j]/totalWeight)
				} else {
					prob = 0.0
				}
				if rng.RandU01() < prob {
					edges = append(edges, switchPair{i: i, j: j})
				}
			}
		}
	}

	return edges
}

// BuildTopo builds a topology frame for the selected family: numSwitches
// switches joined per the family's edge rule, with esPerSwitch end systems
// attached to each switch.  The rng argument supplies every random draw the
// stochastic families make; deterministic families never touch it.  The
// returned frame has default names throughout, replaced when
// AssignIdentifiers runs on the validated topology.
func BuildTopo(name string, family NetworkFamily, numSwitches, esPerSwitch int,
	params BldParams, rng *rngstream.RngStream) (*TopoCfgFrame, error) {

	cerr := checkBldParams(family, numSwitches, esPerSwitch, params)
	if cerr != nil {
		return nil, cerr
	}

	tcf := CreateTopoCfgFrame(name)

	// the switches, in the build order all later traversals derive from,
	// grouped by the family that produced them
	switches := make([]*SwitchFrame, numSwitches)
	for i := 0; i < numSwitches; i += 1 {
		switches[i] = CreateSwitch("", "tsn-switch")
		switches[i].AddGroup(string(family))
		tcf.AddSwitch(switches[i])
	}

	// the switch subgraph
	for _, pair := range familyEdges(family, numSwitches, params, rng) {
		tcf.AddLink(ConnectDevs(switches[pair.i], switches[pair.j]))
	}

	// attach the end systems, switch by switch
	for i := 0; i < numSwitches; i += 1 {
		for k := 0; k < esPerSwitch; k += 1 {
			esf := CreateEndSys("", "tsn-endsys")
			tcf.AddEndSys(esf)
			tcf.AddLink(AttachEndSys(switches[i], esf))
		}
	}

	return &tcf, nil
}

package tsngen

// validate.go checks a built topology frame against the structural contract
// of its generator family, and manages the bounded regeneration retries that
// stochastic families are allowed when an unlucky draw produces an invalid
// graph.

import (
	"fmt"

	"github.com/iti/rngstream"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DfltValidationRetries bounds the number of regeneration attempts made for
// a stochastic family before the run surfaces a ConnectivityError.
const DfltValidationRetries = 25

// switchGraph converts the switch/link subgraph of the frame into a gonum
// graph keyed by build-order index, the representation the connectivity and
// component analysis below operates on.
func switchGraph(tcf *TopoCfgFrame) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	idxByName := make(map[string]int)
	for idx, swtch := range tcf.Switches {
		idxByName[swtch.Name] = idx
		g.AddNode(simple.Node(idx))
	}
	for _, lf := range tcf.SwitchLinks() {
		i := idxByName[lf.SrcPort.Device.DevName()]
		j := idxByName[lf.DstPort.Device.DevName()]
		g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
	}

	return g
}

// validateCounts confirms that the frame holds exactly the configured number
// of switches and end systems, and that every end system names an owning
// switch present in the topology.
func validateCounts(tcf *TopoCfgFrame, numSwitches, esPerSwitch int) error {
	if len(tcf.Switches) != numSwitches {
		return fmt.Errorf("expected %d switches, topology holds %d", numSwitches, len(tcf.Switches))
	}
	if len(tcf.EndSys) != numSwitches*esPerSwitch {
		return fmt.Errorf("expected %d end systems, topology holds %d",
			numSwitches*esPerSwitch, len(tcf.EndSys))
	}

	return tcf.Consolidate()
}

// validateFamilyContract checks the family-specific structural invariants of
// the switch subgraph: single connected component, no isolated switches, and
// the edge-count and degree bounds the family's construction rule implies.
func validateFamilyContract(tcf *TopoCfgFrame, family NetworkFamily, params BldParams) error {
	numSwitches := len(tcf.Switches)
	swLinks := tcf.SwitchLinks()

	// self-loops and duplicate edges are suppressed at construction, so the
	// component analysis below is over a simple graph
	g := switchGraph(tcf)
	components := topo.ConnectedComponents(g)
	if len(components) != 1 {
		return fmt.Errorf("switch subgraph splits into %d components", len(components))
	}

	// per-switch degree within the switch subgraph
	degree := make(map[string]int)
	for _, lf := range swLinks {
		degree[lf.SrcPort.Device.DevName()] += 1
		degree[lf.DstPort.Device.DevName()] += 1
	}

	if numSwitches > 1 {
		for _, swtch := range tcf.Switches {
			if degree[swtch.Name] == 0 {
				return fmt.Errorf("switch %s is isolated", swtch.Name)
			}
		}
	}

	switch family {
	case FamilyRing:
		wantLinks := numSwitches
		if numSwitches <= 2 {
			wantLinks = numSwitches - 1
		}
		if len(swLinks) != wantLinks {
			return fmt.Errorf("ring over %d switches needs %d links, found %d",
				numSwitches, wantLinks, len(swLinks))
		}
		if numSwitches > 2 {
			for _, swtch := range tcf.Switches {
				if degree[swtch.Name] != 2 {
					return fmt.Errorf("ring switch %s has degree %d", swtch.Name, degree[swtch.Name])
				}
			}
		}

	case FamilyPath:
		if len(swLinks) != numSwitches-1 {
			return fmt.Errorf("path over %d switches needs %d links, found %d",
				numSwitches, numSwitches-1, len(swLinks))
		}
		endpoints := 0
		for _, swtch := range tcf.Switches {
			switch degree[swtch.Name] {
			case 1:
				endpoints += 1
			case 2:
			default:
				if numSwitches > 1 {
					return fmt.Errorf("path switch %s has degree %d", swtch.Name, degree[swtch.Name])
				}
			}
		}
		if numSwitches > 1 && endpoints != 2 {
			return fmt.Errorf("path has %d degree-1 endpoints, needs 2", endpoints)
		}

	case FamilyMesh:
		if params.Degree == 0 {
			wantLinks := numSwitches * (numSwitches - 1) / 2
			if len(swLinks) != wantLinks {
				return fmt.Errorf("complete mesh over %d switches needs %d links, found %d",
					numSwitches, wantLinks, len(swLinks))
			}
		}

	case FamilyGeometric, FamilyBinomial, FamilyExpDegree:
		// the connectivity and isolation checks above are the whole
		// contract; these families promise no particular edge count
	}

	return nil
}

// ValidateTopo runs the full structural check of a built frame: counts,
// ownership, connectivity, and the family contract.
func ValidateTopo(tcf *TopoCfgFrame, family NetworkFamily, numSwitches, esPerSwitch int,
	params BldParams) error {

	cerr := validateCounts(tcf, numSwitches, esPerSwitch)
	if cerr != nil {
		return cerr
	}

	return validateFamilyContract(tcf, family, params)
}

// BuildValidatedTopo drives build-then-validate as an explicit bounded loop.
// Each attempt draws from its own named rng stream, so a failed draw's
// regeneration uses a fresh derived sub-seed rather than re-sampling the
// same sequence.  Deterministic families get exactly one attempt: rebuilding
// them cannot change the outcome.  Exhausting the retry budget surfaces a
// ConnectivityError naming the family and seed that failed.
func BuildValidatedTopo(name string, family NetworkFamily, numSwitches, esPerSwitch int,
	params BldParams, seed int64, maxRetries int) (*TopoCfgFrame, error) {

	if maxRetries < 1 {
		maxRetries = 1
	}
	attempts := maxRetries
	if !family.Stochastic() {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt += 1 {
		rng := rngstream.New(fmt.Sprintf("bld-%s-%d", family, attempt))

		tcf, berr := BuildTopo(name, family, numSwitches, esPerSwitch, params, rng)
		if berr != nil {
			// parameter errors are fatal immediately, no retry
			return nil, berr
		}

		lastErr = ValidateTopo(tcf, family, numSwitches, esPerSwitch, params)
		if lastErr == nil {
			return tcf, nil
		}
	}

	return nil, &ConnectivityError{Family: family, Seed: seed, Attempts: attempts,
		Reason: lastErr.Error()}
}

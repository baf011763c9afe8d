package tsngen

// pipeline.go drives the full generation pipeline of one scenario: build and
// validate the topology, assign canonical identifiers, synthesize traffic,
// resolve routes, and transform everything into the serializable artifact
// structures.  A scenario is built once and is immutable after that; a
// failed stage aborts the whole run.

import (
	"fmt"
	"strconv"

	"github.com/iti/rngstream"
)

// A Scenario holds the completed, identifier-consistent output of one
// generation run: the structural artifact, the scenario artifact, and the
// settings that produced them.  It is the read-only structure offered to
// the visualization collaborator.
type Scenario struct {
	Cfg      *TopoCfg
	Streams  *ScenarioCfg
	Settings *ScenarioConfig
}

// GenerateScenario runs the pipeline end to end.  The master seed is set
// once here; every stochastic draw downstream comes from a named rng stream
// derived from it, so two runs with the same settings produce identical
// scenarios.
func GenerateScenario(settings *ScenarioConfig) (*Scenario, error) {
	family, known := KnownFamily(settings.Network.Type)
	if !known {
		return nil, &InvalidParameterError{Param: "network.type",
			Value: settings.Network.Type, Reason: "not a supported network family"}
	}

	trafficTypes, terr := settings.TrafficTypes()
	if terr != nil {
		return nil, terr
	}

	rngstream.SetRngStreamMasterSeed(uint64(settings.Seed))

	tcf, berr := BuildValidatedTopo(settings.Name, family, settings.Network.NumSwitches,
		settings.Network.NodesPerSwitch, settings.BldParams(), settings.Seed, settings.Retries)
	if berr != nil {
		return nil, berr
	}

	if aerr := AssignIdentifiers(tcf); aerr != nil {
		return nil, aerr
	}

	streams, serr := SynthesizeTraffic(tcf, trafficTypes)
	if serr != nil {
		return nil, serr
	}

	if rerr := ResolveRoutes(tcf, streams); rerr != nil {
		return nil, rerr
	}

	topoCfg := tcf.Transform()

	scn := CreateScenarioCfg(settings.Name)
	scn.AddParameter("family", string(family))
	scn.AddParameter("num_switches", strconv.Itoa(settings.Network.NumSwitches))
	scn.AddParameter("nodes_per_switch", strconv.Itoa(settings.Network.NodesPerSwitch))
	scn.AddParameter("seed", fmt.Sprintf("%d", settings.Seed))
	scn.AddParameter("time_unit", settings.Units.Time)
	scn.AddParameter("size_unit", settings.Units.Size)
	for _, strm := range streams {
		scn.Streams = append(scn.Streams, strm.Transform())
	}

	return &Scenario{Cfg: &topoCfg, Streams: scn, Settings: settings}, nil
}

// Emit writes the scenario's artifacts per its settings toggles.  With
// artifact generation switched off nothing is written and the call reports
// what would have been emitted as empty.
func (scenario *Scenario) Emit() (*EmittedArtifacts, error) {
	if !scenario.Settings.GenArtifacts {
		return &EmittedArtifacts{}, nil
	}

	opts := EmitOptions{
		UseYAML: scenario.Settings.Format != "json",
		CSV:     scenario.Settings.GenCSV,
		Dot:     scenario.Settings.Visualize,
	}

	return EmitArtifacts(scenario.Cfg, scenario.Streams, scenario.Settings.OutputDir, opts)
}

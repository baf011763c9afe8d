package tsngen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathSettings(t *testing.T, outputDir string) *ScenarioConfig {
	t.Helper()
	return &ScenarioConfig{
		Name: "small-path",
		Network: NetworkConfig{
			Type:           "path",
			NumSwitches:    4,
			NodesPerSwitch: 2,
		},
		Seed:    1234,
		Retries: DfltValidationRetries,
		Units:   UnitsConfig{Time: "microsecond", Size: "byte"},
		Traffic: []TrafficConfig{{
			Name: "ats", PCP: 6, StreamsPerES: 1,
			Period:   []int{500, 1000, 2000},
			Size:     []int{64, 1500},
			Deadline: []int{1000, 10000},
		}},
		OutputDir:    outputDir,
		Format:       "yaml",
		GenArtifacts: true,
		GenCSV:       true,
		Visualize:    true,
	}
}

func TestGenerateScenarioConcrete(t *testing.T) {
	scenario, err := GenerateScenario(pathSettings(t, t.TempDir()))
	require.NoError(t, err)

	// 4 switches in a chain, 3 inter-switch links, 2 end systems each
	assert.Len(t, scenario.Cfg.Switches, 4)
	assert.Len(t, scenario.Cfg.EndSys, 8)
	assert.Len(t, scenario.Cfg.Links, 3+8)

	// one traffic type at one stream per end system
	require.Len(t, scenario.Streams.Streams, 8)
	for _, sd := range scenario.Streams.Streams {
		assert.Contains(t, []int{500, 1000, 2000}, sd.Period)
		assert.GreaterOrEqual(t, len(sd.Route), 1)
	}
}

func TestGenerateScenarioBoundary(t *testing.T) {
	settings := pathSettings(t, t.TempDir())
	settings.Network.NumSwitches = 1
	settings.Network.NodesPerSwitch = 0
	settings.Traffic = nil

	scenario, err := GenerateScenario(settings)
	require.NoError(t, err)

	assert.Len(t, scenario.Cfg.Switches, 1)
	assert.Empty(t, scenario.Cfg.EndSys)
	assert.Empty(t, scenario.Cfg.Links)
	assert.Empty(t, scenario.Streams.Streams)
}

func TestGenerateScenarioByteIdentical(t *testing.T) {
	render := func() ([]byte, []byte) {
		scenario, err := GenerateScenario(pathSettings(t, t.TempDir()))
		require.NoError(t, err)
		return scenario.Cfg.Serialize("topo.yaml"), scenario.Streams.Serialize("scenario.yaml")
	}

	topo1, scn1 := render()
	topo2, scn2 := render()
	assert.Equal(t, topo1, topo2)
	assert.Equal(t, scn1, scn2)
}

func TestEmitArtifacts(t *testing.T) {
	outputDir := t.TempDir()
	scenario, err := GenerateScenario(pathSettings(t, outputDir))
	require.NoError(t, err)

	emitted, err := scenario.Emit()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "topo.yaml"), emitted.TopoFile)
	assert.Equal(t, filepath.Join(outputDir, "scenario.yaml"), emitted.ScenarioFile)

	// both primary artifacts round-trip
	tc, err := ReadTopoCfg(emitted.TopoFile, true, []byte{})
	require.NoError(t, err)
	assert.Equal(t, scenario.Cfg, tc)

	scn, err := ReadScenarioCfg(emitted.ScenarioFile, true, []byte{})
	require.NoError(t, err)
	assert.Equal(t, scenario.Streams, scn)

	// the CSV tables and the Graphviz rendering were asked for
	for _, name := range []string{emitted.TopoCSV, emitted.StreamsCSV, emitted.DotFile} {
		info, serr := os.Stat(name)
		require.NoError(t, serr)
		assert.Greater(t, info.Size(), int64(0))
	}

	dotBytes, err := os.ReadFile(emitted.DotFile)
	require.NoError(t, err)
	for _, swtch := range scenario.Cfg.Switches {
		assert.Contains(t, string(dotBytes), swtch.Name)
	}
}

func TestCrossCheckCatchesDanglingReference(t *testing.T) {
	scenario, err := GenerateScenario(pathSettings(t, t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, CrossCheck(scenario.Cfg, scenario.Streams))

	// a scenario artifact naming a link absent from the structural artifact
	// is a correctness bug, not an emittable output
	scenario.Streams.Streams[0].Route = append(scenario.Streams.Streams[0].Route, "lnk999")
	require.Error(t, CrossCheck(scenario.Cfg, scenario.Streams))
}

func TestEmitAllOrNothing(t *testing.T) {
	outputDir := t.TempDir()
	scenario, err := GenerateScenario(pathSettings(t, outputDir))
	require.NoError(t, err)

	scenario.Streams.Streams[0].SrcEndSys = "es999"

	_, emitErr := scenario.Emit()
	require.Error(t, emitErr)

	// nothing may be retained from the failed emission
	entries, rerr := os.ReadDir(outputDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

func TestEmitDisabled(t *testing.T) {
	outputDir := t.TempDir()
	settings := pathSettings(t, outputDir)
	settings.GenArtifacts = false

	scenario, err := GenerateScenario(settings)
	require.NoError(t, err)

	emitted, err := scenario.Emit()
	require.NoError(t, err)
	assert.Empty(t, emitted.TopoFile)

	entries, rerr := os.ReadDir(outputDir)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

func TestStreamsCSVColumns(t *testing.T) {
	scenario, err := GenerateScenario(pathSettings(t, t.TempDir()))
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSpace(string(streamsCSV(scenario.Streams))), "\n")
	require.Len(t, rows, len(scenario.Streams.Streams))

	// pcp,name,type,source,destination,size,period,deadline
	first := strings.Split(rows[0], ",")
	require.Len(t, first, 8)
	assert.Equal(t, "6", first[0])
	assert.Equal(t, scenario.Streams.Streams[0].Name, first[1])
	assert.Equal(t, "ats", first[2])
}

func TestTopoCSVDeviceRows(t *testing.T) {
	scenario, err := GenerateScenario(pathSettings(t, t.TempDir()))
	require.NoError(t, err)

	table := string(topoCSV(scenario.Cfg))
	assert.Contains(t, table, "SW,sw0,")
	assert.Contains(t, table, "ES,es7,")
	assert.Contains(t, table, "LINK,lnk0,")
}

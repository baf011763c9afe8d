package tsngen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingsDoc = []byte(`
name: ats-ring
network:
  type: ring
  num_switches: 6
  nodes_per_switch: 3
seed: 42
units:
  time: microsecond
  size: byte
traffic:
  - name: ats
    pcp: 6
    streams_per_es: 2
    period: [500, 1000, 2000]
    size: [64, 1500]
    deadline: [1000, 10000]
  - name: control
    pcp: 7
    streams_per_es: 1
    period: [250]
    size: [64, 128]
    deadline: [500, 1000]
output_dir: out
gen_artifacts: true
gen_csv: true
visualize: false
`)

func TestReadScenarioConfig(t *testing.T) {
	cfg, err := ReadScenarioConfig("", settingsDoc)
	require.NoError(t, err)

	assert.Equal(t, "ats-ring", cfg.Name)
	assert.Equal(t, "ring", cfg.Network.Type)
	assert.Equal(t, 6, cfg.Network.NumSwitches)
	assert.Equal(t, 3, cfg.Network.NodesPerSwitch)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.GenArtifacts)
	assert.False(t, cfg.Visualize)

	// unset optional fields pick up their defaults
	assert.Equal(t, DfltValidationRetries, cfg.Retries)
	assert.Equal(t, "yaml", cfg.Format)

	types, terr := cfg.TrafficTypes()
	require.NoError(t, terr)
	require.Len(t, types, 2)
	assert.Equal(t, "ats", types[0].Name)
	assert.Equal(t, []int{500, 1000, 2000}, types[0].Periods)
	assert.Equal(t, 64, types[0].SizeMin)
	assert.Equal(t, 1500, types[0].SizeMax)
	assert.Equal(t, 7, types[1].PCP)
}

func TestTrafficTypesRejectMalformedRanges(t *testing.T) {
	cfg, err := ReadScenarioConfig("", settingsDoc)
	require.NoError(t, err)

	cfg.Traffic[0].Size = []int{64}
	_, terr := cfg.TrafficTypes()
	require.Error(t, terr)
	var ipe *InvalidParameterError
	require.ErrorAs(t, terr, &ipe)
}

func TestConfigDrivesFullPipeline(t *testing.T) {
	cfg, err := ReadScenarioConfig("", settingsDoc)
	require.NoError(t, err)
	cfg.OutputDir = t.TempDir()

	scenario, gerr := GenerateScenario(cfg)
	require.NoError(t, gerr)

	assert.Len(t, scenario.Cfg.Switches, 6)
	assert.Len(t, scenario.Cfg.EndSys, 18)
	// two types at 2+1 streams per end system
	assert.Len(t, scenario.Streams.Streams, 18*3)

	_, eerr := scenario.Emit()
	require.NoError(t, eerr)
}

package tsngen

// config.go reads the scenario settings file: the selected topology family
// and its size parameters, the declared units, the traffic-type registry
// with its per-type parameter blocks, and the output controls.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NetworkConfig selects the topology family and its parameters.
type NetworkConfig struct {
	// Type names the generator family; "cycle" is accepted for ring
	Type string `yaml:"type" json:"type"`

	NumSwitches    int `yaml:"num_switches" json:"num_switches"`
	NodesPerSwitch int `yaml:"nodes_per_switch" json:"nodes_per_switch"`

	// family-specific knobs, each read only by the family that declares it
	Radius    float64   `yaml:"radius,omitempty" json:"radius,omitempty"`
	EdgeProb  float64   `yaml:"edge_prob,omitempty" json:"edge_prob,omitempty"`
	ExpDegree []float64 `yaml:"expected_degree,omitempty" json:"expected_degree,omitempty"`
	Degree    int       `yaml:"degree,omitempty" json:"degree,omitempty"`
}

// UnitsConfig declares the units stream attributes are expressed in.
type UnitsConfig struct {
	Time string `yaml:"time" json:"time"`
	Size string `yaml:"size" json:"size"`
}

// TrafficConfig is the settings-file form of one traffic type.  Size and
// deadline are two-element [min,max] lists, period is the full candidate
// list, all inclusive.
type TrafficConfig struct {
	Name         string `yaml:"name" json:"name"`
	PCP          int    `yaml:"pcp" json:"pcp"`
	StreamsPerES int    `yaml:"streams_per_es" json:"streams_per_es"`
	Period       []int  `yaml:"period" json:"period"`
	Size         []int  `yaml:"size" json:"size"`
	Deadline     []int  `yaml:"deadline" json:"deadline"`
}

// ScenarioConfig is the complete settings file of one generation run.
type ScenarioConfig struct {
	Name    string          `yaml:"name" json:"name"`
	Network NetworkConfig   `yaml:"network" json:"network"`
	Seed    int64           `yaml:"seed" json:"seed"`
	Retries int             `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	Units   UnitsConfig     `yaml:"units" json:"units"`
	Traffic []TrafficConfig `yaml:"traffic" json:"traffic"`

	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Format selects yaml or json artifacts
	Format string `yaml:"format,omitempty" json:"format,omitempty"`

	// GenArtifacts gates artifact emission; GenCSV and Visualize gate the
	// supplementary CSV tables and Graphviz rendering
	GenArtifacts bool `yaml:"gen_artifacts" json:"gen_artifacts"`
	GenCSV       bool `yaml:"gen_csv" json:"gen_csv"`
	Visualize    bool `yaml:"visualize" json:"visualize"`
}

// ReadScenarioConfig deserializes a byte slice holding a scenario settings
// file.  If the input argument of dict (those bytes) is empty, the file
// whose name is given is read to acquire them.
func ReadScenarioConfig(filename string, dict []byte) (*ScenarioConfig, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ScenarioConfig{}
	err = yaml.Unmarshal(dict, &example)
	if err != nil {
		return nil, err
	}

	if len(example.Units.Time) == 0 {
		example.Units.Time = "microsecond"
	}
	if len(example.Units.Size) == 0 {
		example.Units.Size = "byte"
	}
	if example.Retries == 0 {
		example.Retries = DfltValidationRetries
	}
	if len(example.Format) == 0 {
		example.Format = "yaml"
	}

	return &example, nil
}

// TrafficTypes converts the settings-file traffic blocks into the typed form
// the synthesizer consumes, vetting the [min,max] list shapes on the way.
func (cfg *ScenarioConfig) TrafficTypes() ([]*TrafficType, error) {
	types := make([]*TrafficType, 0, len(cfg.Traffic))

	for _, tc := range cfg.Traffic {
		if len(tc.Size) != 2 {
			return nil, &InvalidParameterError{Param: tc.Name + ".size",
				Value: fmt.Sprintf("%v", tc.Size), Reason: "must be a [min,max] pair"}
		}
		if len(tc.Deadline) != 2 {
			return nil, &InvalidParameterError{Param: tc.Name + ".deadline",
				Value: fmt.Sprintf("%v", tc.Deadline), Reason: "must be a [min,max] pair"}
		}

		tt := &TrafficType{
			Name:         tc.Name,
			PCP:          tc.PCP,
			StreamsPerES: tc.StreamsPerES,
			Periods:      tc.Period,
			SizeMin:      tc.Size[0],
			SizeMax:      tc.Size[1],
			DeadlineMin:  tc.Deadline[0],
			DeadlineMax:  tc.Deadline[1],
		}
		if terr := checkTrafficType(tt); terr != nil {
			return nil, terr
		}
		types = append(types, tt)
	}

	return types, nil
}

// BldParams extracts the family-specific builder knobs from the settings.
func (cfg *ScenarioConfig) BldParams() BldParams {
	return BldParams{
		Radius:    cfg.Network.Radius,
		EdgeProb:  cfg.Network.EdgeProb,
		ExpDegree: cfg.Network.ExpDegree,
		Degree:    cfg.Network.Degree,
	}
}

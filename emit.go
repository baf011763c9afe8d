package tsngen

// emit.go renders a completed scenario into the artifacts the simulator and
// the delay-analysis tooling consume: the structural description of the
// topology, the scenario description binding each stream's attributes and
// route to the structural identifiers, and optionally the CSV tables and a
// Graphviz rendering of the topology.  Emission is all-or-nothing: every
// artifact is rendered and cross-checked in memory before any file is
// created, and a cross-reference that cannot be resolved aborts the run.

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gopkg.in/yaml.v3"
)

type StreamDescSlice []StreamDesc

// ScenarioParam holds one named run parameter recorded in the scenario
// artifact, e.g. the declared time unit or the seed of the run.
type ScenarioParam struct {
	Param string `json:"param" yaml:"param"`
	Value string `json:"value" yaml:"value"`
}

// ScenarioCfg is the serializable scenario artifact: the run parameters and
// the full stream set with resolved routes, all references expressed in the
// identifiers of the structural artifact.
type ScenarioCfg struct {
	Name       string          `json:"scnname" yaml:"scnname"`
	Parameters []ScenarioParam `json:"parameters" yaml:"parameters"`
	Streams    StreamDescSlice `json:"streams" yaml:"streams"`
}

// CreateScenarioCfg is a constructor.
func CreateScenarioCfg(name string) *ScenarioCfg {
	scn := new(ScenarioCfg)
	scn.Name = name
	scn.Parameters = make([]ScenarioParam, 0)
	scn.Streams = make(StreamDescSlice, 0)

	return scn
}

// AddParameter records a named run parameter in the scenario artifact.
func (scn *ScenarioCfg) AddParameter(param, value string) {
	scn.Parameters = append(scn.Parameters, ScenarioParam{Param: param, Value: value})
}

// Serialize renders the ScenarioCfg as yaml or json, selected based on the
// extension of the file the bytes are destined for.
func (scn *ScenarioCfg) Serialize(filename string) []byte {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*scn)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*scn, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	return bytes
}

// WriteToFile stores the ScenarioCfg struct to the file whose name is given.
func (scn *ScenarioCfg) WriteToFile(filename string) error {
	bytes := scn.Serialize(filename)

	f, cerr := os.Create(filename)
	if cerr != nil {
		return cerr
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		f.Close()
		return werr
	}

	return f.Close()
}

// ReadScenarioCfg deserializes a byte slice holding a representation of a
// ScenarioCfg struct.  If the input argument of dict (those bytes) is empty,
// the file whose name is given is read to acquire them.
func ReadScenarioCfg(filename string, useYAML bool, dict []byte) (*ScenarioCfg, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ScenarioCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// CrossCheck confirms the emitter's core invariant: every identifier the
// scenario artifact refers to appears in the structural artifact.  A
// reference that does not resolve is a correctness bug, never an acceptable
// output.
func CrossCheck(tc *TopoCfg, scn *ScenarioCfg) error {
	known := make(map[string]bool)
	for _, swtch := range tc.Switches {
		known[swtch.Name] = true
	}
	for _, esd := range tc.EndSys {
		known[esd.Name] = true
	}
	for _, ld := range tc.Links {
		known[ld.Name] = true
	}

	errs := make([]error, 0)
	for _, sd := range scn.Streams {
		if !known[sd.SrcEndSys] {
			errs = append(errs, fmt.Errorf("stream %s source %s not in structural artifact",
				sd.Name, sd.SrcEndSys))
		}
		if !known[sd.DstEndSys] {
			errs = append(errs, fmt.Errorf("stream %s destination %s not in structural artifact",
				sd.Name, sd.DstEndSys))
		}
		for _, linkName := range sd.Route {
			if !known[linkName] {
				errs = append(errs, fmt.Errorf("stream %s route link %s not in structural artifact",
					sd.Name, linkName))
			}
		}
	}

	return ReportErrs(errs)
}

// EmittedArtifacts lists the files one emission run produced.
type EmittedArtifacts struct {
	TopoFile     string
	ScenarioFile string
	TopoCSV      string
	StreamsCSV   string
	DotFile      string
}

// EmitOptions selects the artifact formats of an emission run.
type EmitOptions struct {
	// UseYAML selects yaml artifacts; json otherwise
	UseYAML bool

	// CSV additionally emits the topology and stream tables in the CSV
	// format of the worst-case-delay toolchain
	CSV bool

	// Dot additionally emits a Graphviz rendering of the topology
	Dot bool
}

// artifact pairs a destination file with its fully rendered content.
type artifact struct {
	filename string
	content  []byte
}

// EmitArtifacts writes the artifacts of a completed scenario into outputDir.
// Every artifact is rendered and cross-checked before the first file is
// created; on any later write failure the files already written by this run
// are removed, so a failed emission retains nothing partial.
func EmitArtifacts(tc *TopoCfg, scn *ScenarioCfg, outputDir string,
	opts EmitOptions) (*EmittedArtifacts, error) {

	valid, derr := CheckDirectories([]string{outputDir})
	if !valid {
		return nil, derr
	}

	xerr := CrossCheck(tc, scn)
	if xerr != nil {
		return nil, xerr
	}

	ext := ".json"
	if opts.UseYAML {
		ext = ".yaml"
	}

	emitted := new(EmittedArtifacts)
	emitted.TopoFile = filepath.Join(outputDir, "topo"+ext)
	emitted.ScenarioFile = filepath.Join(outputDir, "scenario"+ext)

	// render everything before writing anything
	pending := []artifact{
		{filename: emitted.TopoFile, content: tc.Serialize(emitted.TopoFile)},
		{filename: emitted.ScenarioFile, content: scn.Serialize(emitted.ScenarioFile)},
	}

	if opts.CSV {
		emitted.TopoCSV = filepath.Join(outputDir, "topology.csv")
		emitted.StreamsCSV = filepath.Join(outputDir, "streams.csv")
		pending = append(pending,
			artifact{filename: emitted.TopoCSV, content: topoCSV(tc)},
			artifact{filename: emitted.StreamsCSV, content: streamsCSV(scn)})
	}

	if opts.Dot {
		dotBytes, derr := topoDot(tc)
		if derr != nil {
			return nil, derr
		}
		emitted.DotFile = filepath.Join(outputDir, "topo.dot")
		pending = append(pending, artifact{filename: emitted.DotFile, content: dotBytes})
	}

	// probe every destination before the first write
	names := make([]string, 0, len(pending))
	for _, art := range pending {
		names = append(names, art.filename)
	}
	if ok, ferr := CheckOutputFiles(names); !ok {
		return nil, ferr
	}

	written := make([]string, 0, len(pending))
	for _, art := range pending {
		if werr := os.WriteFile(art.filename, art.content, 0644); werr != nil {
			for _, name := range written {
				os.Remove(name)
			}
			return nil, werr
		}
		written = append(written, art.filename)
	}

	return emitted, nil
}

// topoCSV renders the topology table the delay toolchain reads: device rows
// first (type, name, port count), then one LINK row per link with the
// endpoint devices and port numbers.
func topoCSV(tc *TopoCfg) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"DeviceType", "DeviceName", "Ports"})
	for _, swtch := range tc.Switches {
		w.Write([]string{"SW", swtch.Name, strconv.Itoa(len(swtch.Ports))})
	}
	for _, esd := range tc.EndSys {
		w.Write([]string{"ES", esd.Name, strconv.Itoa(len(esd.Ports))})
	}
	for _, ld := range tc.Links {
		w.Write([]string{"LINK", ld.Name, ld.SrcDev, strconv.Itoa(ld.SrcPort),
			ld.DstDev, strconv.Itoa(ld.DstPort)})
	}

	w.Flush()
	return buf.Bytes()
}

// streamsCSV renders the stream table in the delay toolchain's column order:
// pcp, name, type, source, destination, size, period, deadline.
func streamsCSV(scn *ScenarioCfg) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, sd := range scn.Streams {
		w.Write([]string{strconv.Itoa(sd.PCP), sd.Name, sd.Type, sd.SrcEndSys,
			sd.DstEndSys, strconv.Itoa(sd.Size), strconv.Itoa(sd.Period),
			strconv.Itoa(sd.Deadline)})
	}

	w.Flush()
	return buf.Bytes()
}

// dotNode labels a topology device in the Graphviz rendering.
type dotNode struct {
	id   int64
	name string
}

func (dn dotNode) ID() int64     { return dn.id }
func (dn dotNode) DOTID() string { return dn.name }

// topoDot renders the topology as a Graphviz graph for the visualization
// collaborator.  Generation does not depend on this rendering.
func topoDot(tc *TopoCfg) ([]byte, error) {
	g := simple.NewUndirectedGraph()

	idByName := make(map[string]int64)
	add := func(name string, numID int) {
		node := dotNode{id: int64(numID), name: name}
		idByName[name] = node.id
		g.AddNode(node)
	}
	for _, swtch := range tc.Switches {
		add(swtch.Name, swtch.NumID)
	}
	for _, esd := range tc.EndSys {
		add(esd.Name, esd.NumID)
	}

	for _, ld := range tc.Links {
		g.SetEdge(simple.Edge{
			F: dotNode{id: idByName[ld.SrcDev], name: ld.SrcDev},
			T: dotNode{id: idByName[ld.DstDev], name: ld.DstDev},
		})
	}

	return dot.Marshal(g, tc.Name, "", "  ")
}

package tsngen

// topo.go holds structs, methods, and data structures supporting the
// construction of and access to models of TSN test networks: switches,
// the end systems attached to them, and the links that join them.

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// To most easily serialize and deserialize the structures involved in a
// scenario description we ensure they are completely describable without
// pointers.  On the other hand it is much easier to manage construction of a
// network if we allow pointers.  Our approach, as in mrnes, is to carry two
// representations of each kind of structure: one with the final appellation
// of 'Frame' that holds pointers and is used during construction, and a
// pointer-free version with the final appellation of 'Desc' used for
// serialization.  After a topology is completely built every Frame is
// transformed into its Desc form.

// counters of the number of default instances of each object type created,
// used to generate unique default names before canonical identifier
// assignment replaces them
var numberOfSwitches int
var numberOfEndSys int
var numberOfLinks int
var numberOfStreams int

// maps that let you use a name to look up an object
var objTypeByName map[string]string
var devByName map[string]TopoDev
var linkByName map[string]*LinkFrame

// devConnected gives for each device a list of the other devices it already
// connects to directly, used to suppress duplicate edges
var devConnected map[string][]string

// InitTopoFrames resets the package-level registries and counters.  It is
// called when a new TopoCfgFrame is created, so that every scenario is built
// from a clean slate.
func InitTopoFrames() {
	numberOfSwitches = 0
	numberOfEndSys = 0
	numberOfLinks = 0
	numberOfStreams = 0

	objTypeByName = make(map[string]string)
	devByName = make(map[string]TopoDev)
	linkByName = make(map[string]*LinkFrame)
	devConnected = make(map[string][]string)
}

// The TopoDev interface lets us use common code when topology objects
// (switch, end system) are involved in model construction.
type TopoDev interface {
	DevName() string          // returns the .Name field of the struct
	DevType() string          // returns the type ("Switch" or "EndSys")
	DevPorts() []*PortFrame   // list of ports on the device
	DevAddPort(pf *PortFrame) // attach another port to the device
	setDevName(name string)   // rename during identifier assignment
}

// PortDesc defines a serializable description of a device port.
type PortDesc struct {
	// port number, unique among the ports of the device that holds it
	Number int `json:"number" yaml:"number"`

	// name of the switch or end system on which this port resides
	Device string `json:"device" yaml:"device"`

	// name of the link this port terminates
	Link string `json:"link" yaml:"link"`
}

// PortFrame gives the pre-serialization description of a port.  'Almost' the
// same as PortDesc, with the exception of one pointer.
type PortFrame struct {
	Number int
	Device TopoDev
	Link   *LinkFrame
}

// Transform converts a PortFrame and returns a PortDesc, for serialization.
func (pf *PortFrame) Transform() PortDesc {
	pd := new(PortDesc)
	pd.Number = pf.Number
	pd.Device = pf.Device.DevName()
	if pf.Link != nil {
		pd.Link = pf.Link.Name
	}

	return *pd
}

// SwitchDesc defines a serializable description of a TSN switch.
type SwitchDesc struct {
	Name   string   `json:"name" yaml:"name"`
	Groups []string `json:"groups" yaml:"groups"`
	Model  string   `json:"model" yaml:"model"`

	// numeric identifier assigned in canonical traversal order
	NumID int `json:"numid" yaml:"numid"`

	Ports []PortDesc `json:"ports" yaml:"ports"`

	// names of the end systems attached to this switch, in attachment order
	EndSys []string `json:"endsys" yaml:"endsys"`

	// names of the links incident to this switch, in creation order
	Links []string `json:"links" yaml:"links"`
}

// SwitchFrame holds a pre-serialization representation of a switch.
type SwitchFrame struct {
	Name   string // unique string identifier used to reference the switch
	Groups []string
	Model  string // device model identifier
	NumID  int
	Ports  []*PortFrame
	EndSys []*EndSysFrame // end systems attached to this switch
}

// DefaultSwitchName returns a unique placeholder name for a switch.
func DefaultSwitchName() string {
	return fmt.Sprintf("switch.(%d)", numberOfSwitches)
}

// CreateSwitch constructs a switch frame.  Saves (and possibly creates) the
// switch name in the package registries.
func CreateSwitch(name, model string) *SwitchFrame {
	sf := new(SwitchFrame)
	numberOfSwitches += 1

	// an empty string given as name flags that we should create a default one
	if len(name) == 0 {
		name = DefaultSwitchName()
	}
	objTypeByName[name] = "Switch" // from the name look up the type of object
	devByName[name] = sf           // from the name look up the device

	sf.Name = name
	sf.Model = model
	sf.Ports = make([]*PortFrame, 0)
	sf.EndSys = make([]*EndSysFrame, 0)
	sf.Groups = []string{}

	return sf
}

// AddGroup adds a group to a switch's list of groups, if not already present.
func (sf *SwitchFrame) AddGroup(groupName string) {
	if !slices.Contains(sf.Groups, groupName) {
		sf.Groups = append(sf.Groups, groupName)
	}
}

// DevName returns the name of the switch.
func (sf *SwitchFrame) DevName() string {
	return sf.Name
}

// DevType returns the type of the TopoDev.
func (sf *SwitchFrame) DevType() string {
	return "Switch"
}

// DevPorts returns the list of PortFrames attached to the switch.
func (sf *SwitchFrame) DevPorts() []*PortFrame {
	return sf.Ports
}

// DevAddPort attaches a PortFrame to the switch.
func (sf *SwitchFrame) DevAddPort(pf *PortFrame) {
	pf.Device = sf
	pf.Number = len(sf.Ports)
	sf.Ports = append(sf.Ports, pf)
}

func (sf *SwitchFrame) setDevName(name string) {
	delete(objTypeByName, sf.Name)
	delete(devByName, sf.Name)
	sf.Name = name
	objTypeByName[name] = "Switch"
	devByName[name] = sf
}

// Transform returns a serializable SwitchDesc, transformed from a SwitchFrame.
func (sf *SwitchFrame) Transform() SwitchDesc {
	sd := new(SwitchDesc)
	sd.Name = sf.Name
	sd.Model = sf.Model
	sd.Groups = sf.Groups
	sd.NumID = sf.NumID

	// serialize the ports by calling their own serialization routines
	sd.Ports = make([]PortDesc, len(sf.Ports))
	for idx := 0; idx < len(sf.Ports); idx += 1 {
		sd.Ports[idx] = sf.Ports[idx].Transform()
	}

	// the Desc version refers to attached end systems and incident links by name
	sd.EndSys = make([]string, len(sf.EndSys))
	for idx, esf := range sf.EndSys {
		sd.EndSys[idx] = esf.Name
	}

	sd.Links = make([]string, 0)
	for _, pf := range sf.Ports {
		if pf.Link != nil {
			sd.Links = append(sd.Links, pf.Link.Name)
		}
	}

	return *sd
}

// EndSysDesc defines a serializable description of an end system.
type EndSysDesc struct {
	Name   string   `json:"name" yaml:"name"`
	Groups []string `json:"groups" yaml:"groups"`
	Model  string   `json:"model" yaml:"model"`
	NumID  int      `json:"numid" yaml:"numid"`

	// name of the switch this end system attaches to, exactly one
	Switch string `json:"switch" yaml:"switch"`

	Ports []PortDesc `json:"ports" yaml:"ports"`

	// names of the streams this end system originates, in creation order
	Streams []string `json:"streams" yaml:"streams"`
}

// EndSysFrame holds a pre-serialization representation of an end system,
// a traffic source/sink attached to exactly one switch.
type EndSysFrame struct {
	Name    string
	Groups  []string
	Model   string
	NumID   int
	Switch  *SwitchFrame // owning switch
	Ports   []*PortFrame
	Streams []*StreamFrame
}

// DefaultEndSysName returns a unique placeholder name for an end system.
func DefaultEndSysName() string {
	return fmt.Sprintf("endsys.(%d)", numberOfEndSys)
}

// CreateEndSys constructs an end system frame and registers its name.
func CreateEndSys(name, model string) *EndSysFrame {
	esf := new(EndSysFrame)
	numberOfEndSys += 1

	if len(name) == 0 {
		name = DefaultEndSysName()
	}
	objTypeByName[name] = "EndSys"
	devByName[name] = esf

	esf.Name = name
	esf.Model = model
	esf.Ports = make([]*PortFrame, 0)
	esf.Streams = make([]*StreamFrame, 0)
	esf.Groups = []string{}

	return esf
}

// AddGroup adds a group to the end system's list of groups, if not already present.
func (esf *EndSysFrame) AddGroup(groupName string) {
	if !slices.Contains(esf.Groups, groupName) {
		esf.Groups = append(esf.Groups, groupName)
	}
}

// DevName returns the name of the end system.
func (esf *EndSysFrame) DevName() string {
	return esf.Name
}

// DevType returns the type of the TopoDev.
func (esf *EndSysFrame) DevType() string {
	return "EndSys"
}

// DevPorts returns the list of PortFrames attached to the end system.
func (esf *EndSysFrame) DevPorts() []*PortFrame {
	return esf.Ports
}

// DevAddPort attaches a PortFrame to the end system.
func (esf *EndSysFrame) DevAddPort(pf *PortFrame) {
	pf.Device = esf
	pf.Number = len(esf.Ports)
	esf.Ports = append(esf.Ports, pf)
}

func (esf *EndSysFrame) setDevName(name string) {
	delete(objTypeByName, esf.Name)
	delete(devByName, esf.Name)
	esf.Name = name
	objTypeByName[name] = "EndSys"
	devByName[name] = esf
}

// Transform returns a serializable EndSysDesc, transformed from an EndSysFrame.
func (esf *EndSysFrame) Transform() EndSysDesc {
	esd := new(EndSysDesc)
	esd.Name = esf.Name
	esd.Model = esf.Model
	esd.Groups = esf.Groups
	esd.NumID = esf.NumID

	if esf.Switch != nil {
		esd.Switch = esf.Switch.Name
	}

	esd.Ports = make([]PortDesc, len(esf.Ports))
	for idx := 0; idx < len(esf.Ports); idx += 1 {
		esd.Ports[idx] = esf.Ports[idx].Transform()
	}

	esd.Streams = make([]string, len(esf.Streams))
	for idx, strm := range esf.Streams {
		esd.Streams[idx] = strm.Name
	}

	return *esd
}

// LinkDesc defines a serializable description of a link.  A link joins
// either two switches or a switch and an end system.  The link itself is
// bidirectional; the src/dst distinction records only the order in which the
// endpoints were offered when the link was created.
type LinkDesc struct {
	Name    string `json:"name" yaml:"name"`
	NumID   int    `json:"numid" yaml:"numid"`
	SrcDev  string `json:"srcdev" yaml:"srcdev"`
	SrcPort int    `json:"srcport" yaml:"srcport"`
	DstDev  string `json:"dstdev" yaml:"dstdev"`
	DstPort int    `json:"dstport" yaml:"dstport"`
}

// LinkFrame holds a pre-serialization representation of a link.
type LinkFrame struct {
	Name    string
	NumID   int
	SrcPort *PortFrame
	DstPort *PortFrame
}

// DefaultLinkName returns a unique placeholder name for a link.
func DefaultLinkName() string {
	return fmt.Sprintf("link.(%d)", numberOfLinks)
}

// Transform returns a serializable LinkDesc, transformed from a LinkFrame.
func (lf *LinkFrame) Transform() LinkDesc {
	ld := new(LinkDesc)
	ld.Name = lf.Name
	ld.NumID = lf.NumID
	ld.SrcDev = lf.SrcPort.Device.DevName()
	ld.SrcPort = lf.SrcPort.Number
	ld.DstDev = lf.DstPort.Device.DevName()
	ld.DstPort = lf.DstPort.Number

	return *ld
}

// Peer returns the device on the far side of the link from the named device,
// or nil if the named device is not an endpoint of the link.
func (lf *LinkFrame) Peer(devName string) TopoDev {
	if lf.SrcPort.Device.DevName() == devName {
		return lf.DstPort.Device
	}
	if lf.DstPort.Device.DevName() == devName {
		return lf.SrcPort.Device
	}

	return nil
}

// portOut returns the port through which traffic leaving devName enters the link.
func (lf *LinkFrame) portOut(devName string) *PortFrame {
	if lf.SrcPort.Device.DevName() == devName {
		return lf.SrcPort
	}

	return lf.DstPort
}

// isConnected indicates whether two devices whose names are given are
// already joined by a link.
func isConnected(name1, name2 string) bool {
	_, present := devConnected[name1]
	if !present {
		return false
	}
	for _, peer := range devConnected[name1] {
		if peer == name2 {
			return true
		}
	}

	return false
}

// markConnected modifies the devConnected registry to reflect that the
// devices whose names are the arguments have been connected.
func markConnected(name1, name2 string) {
	if isConnected(name1, name2) {
		return
	}
	devConnected[name1] = append(devConnected[name1], name2)
	devConnected[name2] = append(devConnected[name2], name1)
}

// ConnectDevs joins two devices with a new link, creating a fresh port on
// each side.  A second request to connect the same pair is a no-op, which
// keeps the edge set free of duplicates.  The link is returned, nil when the
// connection existed already or the devices are the same (no self-loops).
func ConnectDevs(dev1, dev2 TopoDev) *LinkFrame {
	if dev1.DevName() == dev2.DevName() {
		return nil
	}
	if isConnected(dev1.DevName(), dev2.DevName()) {
		return nil
	}
	markConnected(dev1.DevName(), dev2.DevName())

	lf := new(LinkFrame)
	numberOfLinks += 1
	lf.Name = DefaultLinkName()

	port1 := new(PortFrame)
	dev1.DevAddPort(port1)
	port1.Link = lf

	port2 := new(PortFrame)
	dev2.DevAddPort(port2)
	port2.Link = lf

	lf.SrcPort = port1
	lf.DstPort = port2
	linkByName[lf.Name] = lf

	return lf
}

// AttachEndSys joins an end system to its owning switch: makes the link,
// records the ownership on both sides.
func AttachEndSys(swtch *SwitchFrame, esf *EndSysFrame) *LinkFrame {
	lf := ConnectDevs(swtch, esf)
	esf.Switch = swtch
	swtch.EndSys = append(swtch.EndSys, esf)

	return lf
}

type SwitchDescSlice []SwitchDesc
type EndSysDescSlice []EndSysDesc
type LinkDescSlice []LinkDesc

// TopoCfgFrame holds the pointer-based representation of a complete test
// topology as it is being built.
type TopoCfgFrame struct {
	Name     string
	Switches []*SwitchFrame
	EndSys   []*EndSysFrame
	Links    []*LinkFrame
}

// CreateTopoCfgFrame is a constructor.  It resets the package registries so
// that the new topology is built from a clean slate.
func CreateTopoCfgFrame(name string) TopoCfgFrame {
	TF := new(TopoCfgFrame)
	TF.Name = name

	TF.Switches = make([]*SwitchFrame, 0)
	TF.EndSys = make([]*EndSysFrame, 0)
	TF.Links = make([]*LinkFrame, 0)
	InitTopoFrames()

	return *TF
}

// AddSwitch includes a switch in the topology, if not already present.
func (tf *TopoCfgFrame) AddSwitch(swtch *SwitchFrame) {
	for _, stored := range tf.Switches {
		if stored == swtch || stored.Name == swtch.Name {
			return
		}
	}
	tf.Switches = append(tf.Switches, swtch)
}

// AddEndSys includes an end system in the topology, if not already present.
func (tf *TopoCfgFrame) AddEndSys(esf *EndSysFrame) {
	for _, stored := range tf.EndSys {
		if stored == esf || stored.Name == esf.Name {
			return
		}
	}
	tf.EndSys = append(tf.EndSys, esf)
}

// AddLink includes a link in the topology, if not already present.
func (tf *TopoCfgFrame) AddLink(lf *LinkFrame) {
	if lf == nil {
		return
	}
	for _, stored := range tf.Links {
		if stored == lf || stored.Name == lf.Name {
			return
		}
	}
	tf.Links = append(tf.Links, lf)
}

// SwitchLinks returns the links of the topology that join two switches,
// in creation order.
func (tf *TopoCfgFrame) SwitchLinks() []*LinkFrame {
	swLinks := make([]*LinkFrame, 0)
	for _, lf := range tf.Links {
		if lf.SrcPort.Device.DevType() == "Switch" && lf.DstPort.Device.DevType() == "Switch" {
			swLinks = append(swLinks, lf)
		}
	}

	return swLinks
}

// Consolidate checks the structural sanity of the frame before
// transformation: every end system names an owning switch that is present
// in the topology, and every link endpoint is a known device of its
// registered type.
func (tf *TopoCfgFrame) Consolidate() error {
	errs := make([]error, 0)

	for _, esf := range tf.EndSys {
		if esf.Switch == nil {
			errs = append(errs, fmt.Errorf("end system %s has no owning switch", esf.Name))
			continue
		}
		found := false
		for _, swtch := range tf.Switches {
			if swtch == esf.Switch {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Errorf("end system %s owned by switch %s not in topology",
				esf.Name, esf.Switch.Name))
		}
	}

	for _, lf := range tf.Links {
		for _, pf := range []*PortFrame{lf.SrcPort, lf.DstPort} {
			devName := pf.Device.DevName()
			if _, present := devByName[devName]; !present {
				errs = append(errs, fmt.Errorf("link %s endpoint %s not a known device",
					lf.Name, devName))
				continue
			}
			if objTypeByName[devName] != pf.Device.DevType() {
				errs = append(errs, fmt.Errorf("link %s endpoint %s registered as %s, device reports %s",
					lf.Name, devName, objTypeByName[devName], pf.Device.DevType()))
			}
		}
	}

	return ReportErrs(errs)
}

// Transform converts a TopoCfgFrame into a TopoCfg, for serialization.
// The frame is consolidated first; a failure there is a construction bug
// and panics, as mis-built models cannot be usefully emitted.
func (tf *TopoCfgFrame) Transform() TopoCfg {
	cerr := tf.Consolidate()
	if cerr != nil {
		panic(cerr)
	}

	TD := new(TopoCfg)
	TD.Name = tf.Name

	TD.Switches = make(SwitchDescSlice, 0)
	for _, swtch := range tf.Switches {
		TD.Switches = append(TD.Switches, swtch.Transform())
	}

	TD.EndSys = make(EndSysDescSlice, 0)
	for _, esf := range tf.EndSys {
		TD.EndSys = append(TD.EndSys, esf.Transform())
	}

	TD.Links = make(LinkDescSlice, 0)
	for _, lf := range tf.Links {
		TD.Links = append(TD.Links, lf.Transform())
	}

	return *TD
}

// TopoCfg is the serializable structural artifact: every switch, end system,
// and link of the validated topology, by assigned identifier.
type TopoCfg struct {
	Name     string          `json:"name" yaml:"name"`
	Switches SwitchDescSlice `json:"switches" yaml:"switches"`
	EndSys   EndSysDescSlice `json:"endsys" yaml:"endsys"`
	Links    LinkDescSlice   `json:"links" yaml:"links"`
}

// Serialize renders the TopoCfg as yaml or json, selected based on the
// extension of the file the bytes are destined for.
func (tc *TopoCfg) Serialize(filename string) []byte {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error = nil

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*tc)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*tc, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	return bytes
}

// WriteToFile stores the TopoCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of
// this name.
func (tc *TopoCfg) WriteToFile(filename string) error {
	bytes := tc.Serialize(filename)

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

// ReadTopoCfg deserializes a byte slice holding a representation of a
// TopoCfg struct.  If the input argument of dict (those bytes) is empty, the
// file whose name is given is read to acquire them.
func ReadTopoCfg(filename string, useYAML bool, dict []byte) (*TopoCfg, error) {
	var err error

	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := TopoCfg{}

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

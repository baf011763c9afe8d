package tsngen

// traffic.go synthesizes the traffic streams of a scenario.  Every end
// system originates streams_per_es streams of each configured traffic type,
// with period, size, and deadline drawn from the type's configured
// distributions.  Each end system draws from its own named rng stream, so a
// stream's attribute values depend only on its originator's stream and
// per-source ordinal, never on the draws made for any other end system.

import (
	"fmt"

	"github.com/iti/rngstream"
)

// A TrafficType describes one class of configured traffic, e.g. "ats".
// Period values and the size and deadline bounds are in the units the
// scenario configuration declares (microseconds and bytes by default).
type TrafficType struct {
	// Name tags every stream of this type
	Name string

	// PCP is the IEEE 802.1Q priority code point carried by the type's frames
	PCP int

	// StreamsPerES is the number of streams of this type each end system originates
	StreamsPerES int

	// Periods is the discrete candidate set a stream's period is drawn from
	Periods []int

	// SizeMin, SizeMax bound the frame size draw, inclusive on both ends
	SizeMin, SizeMax int

	// DeadlineMin, DeadlineMax bound the deadline draw, inclusive on both ends
	DeadlineMin, DeadlineMax int
}

// checkTrafficType vets the sampling parameters of a traffic type.
func checkTrafficType(tt *TrafficType) error {
	if len(tt.Name) == 0 {
		return &InvalidParameterError{Param: "traffic.name", Value: "\"\"",
			Reason: "traffic type needs a name"}
	}
	if tt.StreamsPerES < 0 {
		return &InvalidParameterError{Param: tt.Name + ".streams_per_es",
			Value: fmt.Sprintf("%d", tt.StreamsPerES), Reason: "must be non-negative"}
	}
	if tt.StreamsPerES > 0 && len(tt.Periods) == 0 {
		return &InvalidParameterError{Param: tt.Name + ".period", Value: "[]",
			Reason: "period candidate list must not be empty"}
	}
	if tt.SizeMin > tt.SizeMax {
		return &InvalidParameterError{Param: tt.Name + ".size",
			Value: fmt.Sprintf("[%d,%d]", tt.SizeMin, tt.SizeMax), Reason: "min exceeds max"}
	}
	if tt.DeadlineMin > tt.DeadlineMax {
		return &InvalidParameterError{Param: tt.Name + ".deadline",
			Value: fmt.Sprintf("[%d,%d]", tt.DeadlineMin, tt.DeadlineMax), Reason: "min exceeds max"}
	}

	return nil
}

// StreamDesc defines a serializable description of a traffic stream.  The
// Route and Path fields are filled in once route resolution has run.
type StreamDesc struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	PCP  int    `json:"pcp" yaml:"pcp"`

	SrcEndSys string `json:"srcendsys" yaml:"srcendsys"`
	DstEndSys string `json:"dstendsys" yaml:"dstendsys"`

	Period   int `json:"period" yaml:"period"`
	Size     int `json:"size" yaml:"size"`
	Deadline int `json:"deadline" yaml:"deadline"`

	// Route names the links of the resolved path, in traversal order
	Route []string `json:"route" yaml:"route"`

	// Path is the annotated dev:link:port rendering of the same route
	Path string `json:"path" yaml:"path"`
}

// StreamFrame holds a pre-serialization representation of a stream.
type StreamFrame struct {
	Name string
	Type string
	PCP  int

	Src *EndSysFrame
	Dst *EndSysFrame

	Period   int
	Size     int
	Deadline int

	// the resolved route, a link sequence joining Src to Dst, set by
	// route resolution and immutable thereafter
	Route []*LinkFrame
}

// DefaultStreamName returns a unique name for a stream.  Stream numbering is
// global across the scenario, which makes uniqueness structural.
func DefaultStreamName() string {
	return fmt.Sprintf("strm%d", numberOfStreams)
}

// CreateStream constructs a stream frame, names it, and records it with its
// originating end system.  Both endpoints join the group of the stream's
// traffic class.
func CreateStream(tt *TrafficType, src, dst *EndSysFrame, period, size, deadline int) *StreamFrame {
	strm := new(StreamFrame)
	strm.Name = DefaultStreamName()
	numberOfStreams += 1

	strm.Type = tt.Name
	strm.PCP = tt.PCP
	strm.Src = src
	strm.Dst = dst
	strm.Period = period
	strm.Size = size
	strm.Deadline = deadline

	src.Streams = append(src.Streams, strm)
	src.AddGroup(tt.Name)
	dst.AddGroup(tt.Name)

	return strm
}

// Transform returns a serializable StreamDesc, transformed from a StreamFrame.
func (strm *StreamFrame) Transform() StreamDesc {
	sd := new(StreamDesc)
	sd.Name = strm.Name
	sd.Type = strm.Type
	sd.PCP = strm.PCP
	sd.SrcEndSys = strm.Src.Name
	sd.DstEndSys = strm.Dst.Name
	sd.Period = strm.Period
	sd.Size = strm.Size
	sd.Deadline = strm.Deadline

	sd.Route = make([]string, len(strm.Route))
	for idx, lf := range strm.Route {
		sd.Route[idx] = lf.Name
	}
	sd.Path = annotatePath(strm)

	return *sd
}

// annotatePath renders the stream's route in the dev:link:port form the
// downstream delay tooling consumes: every device on the path except the
// destination is tagged with the link it exits through and the port number
// on that link, and the destination closes the string bare.
func annotatePath(strm *StreamFrame) string {
	if len(strm.Route) == 0 {
		return ""
	}

	out := ""
	here := strm.Src.Name
	for _, lf := range strm.Route {
		port := lf.portOut(here)
		out += fmt.Sprintf("%s:%s:%d->", here, lf.Name, port.Number)
		here = lf.Peer(here).DevName()
	}

	return out + here
}

// SynthesizeTraffic generates the full stream set of a scenario.  End
// systems are visited in canonical order; for each, every traffic type
// contributes StreamsPerES streams whose period is a uniform choice from the
// type's candidate list and whose size and deadline are uniform integers in
// the type's inclusive ranges.  The deadline is sampled independently of the
// period and size; no cross-field constraint is enforced here.
//
// The destination of each stream is chosen deterministically: the streams a
// source originates rotate through the other end systems in ascending
// canonical order, keyed by the stream's per-source ordinal.
func SynthesizeTraffic(tcf *TopoCfgFrame, trafficTypes []*TrafficType) ([]*StreamFrame, error) {
	for _, tt := range trafficTypes {
		if terr := checkTrafficType(tt); terr != nil {
			return nil, terr
		}
	}

	totalPerES := 0
	for _, tt := range trafficTypes {
		totalPerES += tt.StreamsPerES
	}

	numES := len(tcf.EndSys)
	if totalPerES > 0 && numES < 2 {
		return nil, &InvalidParameterError{Param: "streams_per_es",
			Value:  fmt.Sprintf("%d", totalPerES),
			Reason: "streams need a destination distinct from the source, topology has fewer than 2 end systems"}
	}

	streams := make([]*StreamFrame, 0)
	for esIdx, esf := range tcf.EndSys {
		// the end system's own rng stream; every draw for its streams
		// comes from here
		rng := rngstream.New("traffic-" + esf.Name)

		ordinal := 0
		for _, tt := range trafficTypes {
			for k := 0; k < tt.StreamsPerES; k += 1 {
				period := tt.Periods[rng.RandInt(0, len(tt.Periods)-1)]
				size := rng.RandInt(tt.SizeMin, tt.SizeMax)
				deadline := rng.RandInt(tt.DeadlineMin, tt.DeadlineMax)

				dstIdx := (esIdx + 1 + ordinal%(numES-1)) % numES
				ordinal += 1

				streams = append(streams, CreateStream(tt, esf, tcf.EndSys[dstIdx],
					period, size, deadline))
			}
		}
	}

	return streams, nil
}

package tsngen

import (
	"fmt"
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// edgeSet collects the switch-subgraph edges of a frame as unordered
// device-name pairs, for comparison across builds.
func edgeSet(tcf *TopoCfgFrame) map[string]bool {
	edges := make(map[string]bool)
	for _, lf := range tcf.SwitchLinks() {
		a := lf.SrcPort.Device.DevName()
		b := lf.DstPort.Device.DevName()
		if b < a {
			a, b = b, a
		}
		edges[a+"|"+b] = true
	}
	return edges
}

func TestBuildTopoCounts(t *testing.T) {
	cases := []struct {
		family    NetworkFamily
		switches  int
		es        int
		params    BldParams
		wantLinks int // switch-subgraph links; -1 means family promises no count
	}{
		{family: FamilyRing, switches: 5, es: 2, wantLinks: 5},
		{family: FamilyRing, switches: 2, es: 1, wantLinks: 1},
		{family: FamilyPath, switches: 4, es: 2, wantLinks: 3},
		{family: FamilyPath, switches: 1, es: 0, wantLinks: 0},
		{family: FamilyMesh, switches: 5, es: 1, wantLinks: 10},
		{family: FamilyMesh, switches: 6, es: 0, params: BldParams{Degree: 2}, wantLinks: 6},
		{family: FamilyGeometric, switches: 6, es: 1, params: BldParams{Radius: 2.0}, wantLinks: 15},
		{family: FamilyBinomial, switches: 6, es: 1, params: BldParams{EdgeProb: 1.0}, wantLinks: 15},
		// weights large enough that every pair probability saturates at 1
		{family: FamilyExpDegree, switches: 5, es: 0, params: BldParams{ExpDegree: []float64{100.0}}, wantLinks: 10},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s-%d", tc.family, tc.switches), func(t *testing.T) {
			rngstream.SetRngStreamMasterSeed(17)
			rng := rngstream.New("test")

			tcf, err := BuildTopo("t", tc.family, tc.switches, tc.es, tc.params, rng)
			require.NoError(t, err)

			assert.Len(t, tcf.Switches, tc.switches)
			assert.Len(t, tcf.EndSys, tc.switches*tc.es)
			if tc.wantLinks >= 0 {
				assert.Len(t, tcf.SwitchLinks(), tc.wantLinks)
			}
			// one link per end-system attachment on top of the switch subgraph
			assert.Len(t, tcf.Links, len(tcf.SwitchLinks())+tc.switches*tc.es)

			// every end system owned by exactly one switch
			for _, esf := range tcf.EndSys {
				require.NotNil(t, esf.Switch)
			}
		})
	}
}

func TestBuildTopoInvalidParams(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(17)
	rng := rngstream.New("test")

	cases := []struct {
		name     string
		family   NetworkFamily
		switches int
		es       int
		params   BldParams
	}{
		{name: "zero switches", family: FamilyRing, switches: 0, es: 1},
		{name: "negative end systems", family: FamilyPath, switches: 3, es: -1},
		{name: "zero radius", family: FamilyGeometric, switches: 3, es: 0},
		{name: "probability above one", family: FamilyBinomial, switches: 3, es: 0,
			params: BldParams{EdgeProb: 1.5}},
		{name: "empty degree sequence", family: FamilyExpDegree, switches: 3, es: 0},
		{name: "unknown family", family: NetworkFamily("torus"), switches: 3, es: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildTopo("t", tc.family, tc.switches, tc.es, tc.params, rng)
			require.Error(t, err)
			var ipe *InvalidParameterError
			require.ErrorAs(t, err, &ipe)
		})
	}
}

func TestStochasticBuildReproducible(t *testing.T) {
	families := []struct {
		family NetworkFamily
		params BldParams
	}{
		{family: FamilyGeometric, params: BldParams{Radius: 0.6}},
		{family: FamilyBinomial, params: BldParams{EdgeProb: 0.5}},
		{family: FamilyExpDegree, params: BldParams{ExpDegree: []float64{3.0, 4.0}}},
	}

	for _, tc := range families {
		t.Run(string(tc.family), func(t *testing.T) {
			rngstream.SetRngStreamMasterSeed(99)
			first, err := BuildTopo("t", tc.family, 8, 1, tc.params, rngstream.New("bld"))
			require.NoError(t, err)
			firstEdges := edgeSet(first)

			rngstream.SetRngStreamMasterSeed(99)
			second, err := BuildTopo("t", tc.family, 8, 1, tc.params, rngstream.New("bld"))
			require.NoError(t, err)

			assert.Equal(t, firstEdges, edgeSet(second))
		})
	}
}

func TestKnownFamily(t *testing.T) {
	family, ok := KnownFamily("cycle")
	require.True(t, ok)
	assert.Equal(t, FamilyRing, family)

	for _, name := range []string{"ring", "path", "mesh", "random-geometric", "binomial", "expected-degree"} {
		_, ok := KnownFamily(name)
		assert.True(t, ok, name)
	}

	_, ok = KnownFamily("hypercube")
	assert.False(t, ok)
}

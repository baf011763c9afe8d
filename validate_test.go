package tsngen

import (
	"testing"

	"github.com/iti/rngstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValidatedTopoDeterministicFamilies(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(5)

	for _, family := range []NetworkFamily{FamilyRing, FamilyPath, FamilyMesh} {
		tcf, err := BuildValidatedTopo("t", family, 4, 2, BldParams{}, 5, DfltValidationRetries)
		require.NoError(t, err, family)
		assert.Len(t, tcf.Switches, 4)
		assert.Len(t, tcf.EndSys, 8)
	}
}

func TestValidateRingContract(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(5)
	rng := rngstream.New("test")

	tcf, err := BuildTopo("t", FamilyRing, 6, 0, BldParams{}, rng)
	require.NoError(t, err)
	require.NoError(t, ValidateTopo(tcf, FamilyRing, 6, 0, BldParams{}))

	// six switches in a ring means six links and uniform degree two
	assert.Len(t, tcf.SwitchLinks(), 6)

	// breaking the cycle must fail the contract
	tcf.Links = tcf.Links[:len(tcf.Links)-1]
	require.Error(t, ValidateTopo(tcf, FamilyRing, 6, 0, BldParams{}))
}

func TestValidateDetectsDisconnection(t *testing.T) {
	// two path components stitched together by hand
	tcf := CreateTopoCfgFrame("t")
	switches := make([]*SwitchFrame, 4)
	for i := range switches {
		switches[i] = CreateSwitch("", "tsn-switch")
		tcf.AddSwitch(switches[i])
	}
	tcf.AddLink(ConnectDevs(switches[0], switches[1]))
	tcf.AddLink(ConnectDevs(switches[2], switches[3]))

	err := validateFamilyContract(&tcf, FamilyBinomial, BldParams{EdgeProb: 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "components")
}

func TestStochasticRetryExhaustion(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(7)

	// a radius this small cannot connect ten switches; every attempt fails
	// and the bounded retry loop must terminate with a ConnectivityError
	_, err := BuildValidatedTopo("t", FamilyGeometric, 10, 1,
		BldParams{Radius: 0.0001}, 7, 3)
	require.Error(t, err)

	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, FamilyGeometric, ce.Family)
	assert.Equal(t, int64(7), ce.Seed)
	assert.Equal(t, 3, ce.Attempts)
}

func TestStochasticGenerousRadiusValidates(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(7)

	// radius covering the whole unit square always yields a complete graph
	tcf, err := BuildValidatedTopo("t", FamilyGeometric, 6, 1,
		BldParams{Radius: 2.0}, 7, DfltValidationRetries)
	require.NoError(t, err)
	assert.Len(t, tcf.SwitchLinks(), 15)
}

func TestSingleSwitchTrivialConnectivity(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(7)

	// one switch and no end systems is a valid degenerate topology
	tcf, err := BuildValidatedTopo("t", FamilyPath, 1, 0, BldParams{}, 7, 1)
	require.NoError(t, err)
	assert.Len(t, tcf.Switches, 1)
	assert.Empty(t, tcf.EndSys)
	assert.Empty(t, tcf.Links)
}

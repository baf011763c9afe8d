package tsngen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolidateEndpointRegistries(t *testing.T) {
	tcf := CreateTopoCfgFrame("t")
	sw1 := CreateSwitch("sw1", "tsn-switch")
	sw2 := CreateSwitch("sw2", "tsn-switch")
	tcf.AddSwitch(sw1)
	tcf.AddSwitch(sw2)
	tcf.AddLink(ConnectDevs(sw1, sw2))

	require.NoError(t, tcf.Consolidate())

	// a link endpoint absent from the device registry is flagged
	delete(devByName, "sw2")
	err := tcf.Consolidate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a known device")
	devByName["sw2"] = sw2

	// an endpoint registered under the wrong type is flagged
	objTypeByName["sw2"] = "EndSys"
	err = tcf.Consolidate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered as")
	objTypeByName["sw2"] = "Switch"

	require.NoError(t, tcf.Consolidate())
}

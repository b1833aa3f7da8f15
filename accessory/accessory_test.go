package accessory

import (
	"testing"

	"github.com/cloudkucooland/pidoor/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchActions(t *testing.T) {
	a := TFAccessory{
		Name: "Gate",
		Actions: []action.Action{
			{TriggerState: "Unsecured", TargetDevice: "Flat", Verb: "Unlock"},
			{TriggerState: "Secured", TargetDevice: "Flat", Verb: "Lock"},
			{TriggerState: "Unsecured", TargetDevice: "Garage", Verb: "Unlock"},
		},
	}

	got := a.MatchActions("Unsecured")
	require.Len(t, got, 2)
	assert.Equal(t, "Flat", got[0].TargetDevice)
	assert.Equal(t, "Garage", got[1].TargetDevice)

	got = a.MatchActions("Secured")
	require.Len(t, got, 1)
	assert.Equal(t, "Lock", got[0].Verb)

	assert.Empty(t, a.MatchActions("Jammed"))
}

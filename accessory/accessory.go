package accessory

import (
	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/pidoor/action"
)

// TFAccessory is the accessory type, PiDoor's stuff, plus hc's stuff
type TFAccessory struct {
	Platform string // PiDoor
	Name     string // the name used internally
	// the accessory's config file name

	URL         string // base URL of the relay, scheme optional
	Port        int    // relay port, 0 keeps whatever the URL says
	Secret      string // shared secret sent as ?secret=
	RelockDelay int    // (seconds) how long the door reports unsecured

	Type hcaccessory.AccessoryType // defined at https://github.com/brutella/hc/tree/master/accessory

	// embedded struct (pointer)
	Info                   hcaccessory.Info // defined at https://github.com/brutella/hc/blob/master/accessory/accessory.go
	*hcaccessory.Accessory                  // set when the device is added to HomeControl

	Device interface{}

	Actions []action.Action
	Runner  func(*TFAccessory, *action.Action) error
}

// MatchActions returns a slice of actions that should be run
// jumping through hoops since including platform here would be circular
func (a *TFAccessory) MatchActions(state string) []*action.Action {
	var actions []*action.Action
	for i := range a.Actions {
		if a.Actions[i].TriggerState == state {
			log.Debug.Printf("[%s] %s: %+v", a.Name, state, a.Actions[i])
			actions = append(actions, &a.Actions[i])
		}
	}
	return actions
}

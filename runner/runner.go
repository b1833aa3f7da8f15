package runner

// this is distinct from pidoor/action because of circular imports

import (
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/pidoor/action"
	"github.com/cloudkucooland/pidoor/platform"
	"github.com/pkg/errors"
)

// RunActions fires every action in its own goroutine
func RunActions(as []*action.Action) {
	for _, a := range as {
		go func(a *action.Action) {
			if err := RunAction(a); err != nil {
				log.Info.Println(err.Error())
			}
		}(a)
	}
}

// RunAction looks up the target device and hands the action to its runner
func RunAction(a *action.Action) error {
	log.Info.Printf("running action: %+v", a)
	p, ok := platform.GetPlatform(a.TargetPlatform)
	if !ok {
		return errors.Errorf("unknown platform [%s]", a.TargetPlatform)
	}
	d, ok := p.GetAccessory(a.TargetDevice)
	if !ok {
		return errors.Errorf("unknown device [%s]", a.TargetDevice)
	}
	if d.Runner == nil {
		return errors.Errorf("[%s] does not have an action runner", d.Name)
	}
	return d.Runner(d, a)
}

package door

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/util"
	tfaccessory "github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/action"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/devices"
	"github.com/cloudkucooland/pidoor/platform"
	"github.com/cloudkucooland/pidoor/runner"
	"github.com/pkg/errors"
)

// Name is what accessory files put in "platform"
const Name = "PiDoor"

// Platform is the platform handle for the relay-driven locks
type Platform struct {
	Running bool

	relayTimeout time.Duration
	pingRate     time.Duration
	storage      util.Storage
	done         chan struct{}

	// relay calls made on behalf of HC or actions; Shutdown cancels it
	ctx    context.Context
	cancel context.CancelFunc
}

type lmu struct {
	mu sync.Mutex
	ls map[string]*tfaccessory.TFAccessory
}

var locks = lmu{ls: make(map[string]*tfaccessory.TFAccessory)}

// Startup is called by the platform management to start the platform up
func (p *Platform) Startup(c *config.Config) platform.Control {
	p.relayTimeout = time.Duration(c.RelayTimeout) * time.Second
	p.pingRate = time.Duration(c.PingRate) * time.Second
	p.ctx, p.cancel = context.WithCancel(context.Background())
	if c.ConfigDir != "" {
		// NewFileStorage hands back a storage even when it could not create the directory
		storage, err := util.NewFileStorage(filepath.Join(c.ConfigDir, "serials"))
		if err != nil {
			log.Info.Printf("unable to get serial storage: %s", err.Error())
		} else {
			p.storage = storage
		}
	}
	p.Running = true
	return p
}

// Shutdown is called by the platform management to shut things down
func (p *Platform) Shutdown() platform.Control {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		close(p.done)
		p.done = nil
	}

	// leave nothing reporting unsecured on the way out
	locks.mu.Lock()
	for _, a := range locks.ls {
		if l, ok := a.Device.(*Lock); ok {
			l.Secure()
		}
	}
	locks.mu.Unlock()

	p.Running = false
	return p
}

// AddAccessory builds the lock, wires it to HC characteristics and registers it with HomeControl
func (p *Platform) AddAccessory(a *tfaccessory.TFAccessory) error {
	hc, ok := platform.GetPlatform("HomeControl")
	if !ok {
		return errors.New("can't add accessory, HomeControl platform does not yet exist")
	}

	if _, ok := p.GetAccessory(a.Name); ok {
		return errors.Errorf("already have a lock named [%s]", a.Name)
	}

	relay, err := NewRelay(a.URL, a.Port, a.Secret, p.relayTimeout)
	if err != nil {
		return errors.Wrapf(err, "[%s]", a.Name)
	}

	if a.Info.Name == "" {
		a.Info.Name = a.Name
	}
	if a.Info.Manufacturer == "" {
		a.Info.Manufacturer = "hmenzagh.eu"
	}
	if a.Info.Model == "" {
		a.Info.Model = "PiDoor"
	}
	if a.Info.SerialNumber == "" {
		if p.storage != nil {
			a.Info.SerialNumber = util.GetSerialNumberForAccessoryName(a.Info.Name, p.storage)
		} else {
			a.Info.SerialNumber = "pi-do-or-not-to-pi-do"
		}
	}
	a.Type = accessory.TypeDoorLock

	d := devices.NewDoorLock(a.Info)
	lock := NewLock(a.Name, d, relay, time.Duration(a.RelockDelay)*time.Second, p.relayTimeout)
	lock.OnChange = func(secured bool) {
		state := "Unsecured"
		if secured {
			state = "Secured"
		}
		runner.RunActions(a.MatchActions(state))
	}

	d.Lock.LockCurrentState.OnValueRemoteGet(lock.CurrentState)
	d.Lock.LockTargetState.OnValueRemoteGet(lock.TargetState)
	d.Lock.LockTargetState.OnValueRemoteUpdate(func(newval int) {
		log.Info.Printf("setting [%s] target to [%d] from HC handler", a.Name, newval)
		if err := lock.SetTargetState(p.relayContext(), newval); err != nil {
			log.Info.Println(err.Error())
		}
	})

	a.Device = lock
	a.Accessory = d.Accessory
	a.Runner = p.actionRunner

	log.Info.Printf("adding [%s]: [%s]", a.Info.Name, relay.Host())
	if err := hc.AddAccessory(a); err != nil {
		return err
	}

	locks.mu.Lock()
	locks.ls[a.Name] = a
	locks.mu.Unlock()
	return nil
}

// GetAccessory looks up a lock by its internal name
func (p *Platform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	a, ok := locks.ls[name]
	return a, ok
}

// Background starts the relay reachability monitor
func (p *Platform) Background() {
	if p.pingRate <= 0 {
		log.Info.Println("PingRate is 0, disabling relay checks")
		return
	}
	p.done = make(chan struct{})
	go monitor(p.pingRate, p.done)
}

// GetLock returns the lock state machine for a named accessory
func GetLock(name string) (*Lock, bool) {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	a, ok := locks.ls[name]
	if !ok {
		return nil, false
	}
	l, ok := a.Device.(*Lock)
	return l, ok
}

// Locks returns every lock, sorted by name
func Locks() []*Lock {
	locks.mu.Lock()
	defer locks.mu.Unlock()
	out := make([]*Lock, 0, len(locks.ls))
	for _, a := range locks.ls {
		if l, ok := a.Device.(*Lock); ok {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Platform) relayContext() context.Context {
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

func (p *Platform) actionRunner(a *tfaccessory.TFAccessory, act *action.Action) error {
	lock, ok := a.Device.(*Lock)
	if !ok {
		return errors.Errorf("[%s] is not a PiDoor lock", a.Name)
	}
	switch act.Verb {
	case "Unlock":
		return lock.SetTargetState(p.relayContext(), characteristic.LockTargetStateUnsecured)
	case "Lock":
		return lock.SetTargetState(p.relayContext(), characteristic.LockTargetStateSecured)
	default:
		return errors.Errorf("unknown verb %s (valid: Unlock, Lock)", act.Verb)
	}
}

package door

import (
	"context"
	"sync"
	"time"

	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/log"
	"github.com/cloudkucooland/pidoor/devices"
	"github.com/pkg/errors"
)

const (
	defaultRelockDelay  = 5 * time.Second
	defaultRelayTimeout = 10 * time.Second
)

// Opener fires the door strike
type Opener interface {
	Open(ctx context.Context) error
}

// Lock reconciles what HomeKit is told with the one thing the relay can do: open.
// The strike re-locks on its own, so after every successful open the lock reports
// unsecured for the relock delay and then flips back to secured.
type Lock struct {
	Name   string
	Device *devices.DoorLock

	opener  Opener
	delay   time.Duration
	timeout time.Duration

	// called under mu whenever current changes; must not block
	OnChange func(secured bool)

	mu      sync.Mutex
	current bool // true == secured
	target  bool
	// StatusFault is raised while either is set
	relayFault bool   // last relay call failed
	pingFault  bool   // relay host stopped answering pings
	gen        uint64 // bumped by every unlock/secure; only the latest cycle may relock
	relock     *time.Timer
}

// Status is the JSON view of a lock
type Status struct {
	Name    string `json:"name"`
	Current string `json:"current"`
	Target  string `json:"target"`
	Fault   bool   `json:"fault"`
}

// NewLock starts out secured, like the door
func NewLock(name string, d *devices.DoorLock, o Opener, delay, timeout time.Duration) *Lock {
	if delay <= 0 {
		delay = defaultRelockDelay
	}
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}
	l := &Lock{
		Name:    name,
		Device:  d,
		opener:  o,
		delay:   delay,
		timeout: timeout,
		current: true,
		target:  true,
	}
	l.push()
	return l
}

// CurrentState is the LockCurrentState value HomeKit should see
func (l *Lock) CurrentState() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current {
		return characteristic.LockCurrentStateSecured
	}
	return characteristic.LockCurrentStateUnsecured
}

// TargetState is the LockTargetState value HomeKit should see
func (l *Lock) TargetState() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.target {
		return characteristic.LockTargetStateSecured
	}
	return characteristic.LockTargetStateUnsecured
}

// Secured reports the current state as a bool
func (l *Lock) Secured() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// SetTargetState handles a LockTargetState write from HomeKit (or the control channel)
func (l *Lock) SetTargetState(ctx context.Context, value int) error {
	switch value {
	case characteristic.LockTargetStateUnsecured:
		return l.Unlock(ctx)
	case characteristic.LockTargetStateSecured:
		l.Secure()
		return nil
	default:
		return errors.Errorf("[%s] unsupported target state: %d", l.Name, value)
	}
}

// Unlock reports unsecured, fires the relay and, once the relay has answered,
// schedules the relock. A failed relay call reports secured straight away.
func (l *Lock) Unlock(ctx context.Context) error {
	log.Info.Printf("[%s] unlock requested", l.Name)

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.stopTimer()
	wasSecured := l.current
	l.current = false
	l.target = false
	l.push()
	if wasSecured {
		l.changed(false)
	}
	l.mu.Unlock()

	octx, cancel := context.WithTimeout(ctx, l.timeout)
	err := l.opener.Open(octx)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		// a newer unlock or a secure request owns the state now
		log.Debug.Printf("[%s] unlock cycle %d superseded by %d", l.Name, gen, l.gen)
		return err
	}

	if err != nil {
		log.Info.Printf("[%s] relay failed, reporting secured: %s", l.Name, err.Error())
		l.setRelayFault(true)
		l.secure()
		return err
	}

	l.setRelayFault(false)
	l.relock = time.AfterFunc(l.delay, func() {
		l.relockFired(gen)
	})
	return nil
}

// Secure reports secured now and cancels any pending relock
func (l *Lock) Secure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.stopTimer()
	l.secure()
}

// SetPingFault records whether the relay host answers pings; a relay failure stays raised regardless
func (l *Lock) SetPingFault(fault bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pingFault = fault
	l.publishFault()
}

// Status is a snapshot for the control channel
func (l *Lock) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{
		Name:    l.Name,
		Current: stateName(l.current),
		Target:  stateName(l.target),
		Fault:   l.relayFault || l.pingFault,
	}
}

func (l *Lock) relockFired(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return
	}
	l.relock = nil
	log.Info.Printf("[%s] relock", l.Name)
	l.secure()
}

// must hold mu
func (l *Lock) secure() {
	wasSecured := l.current
	l.current = true
	l.target = true
	l.push()
	if !wasSecured {
		l.changed(true)
	}
}

// must hold mu
func (l *Lock) stopTimer() {
	if l.relock != nil {
		l.relock.Stop()
		l.relock = nil
	}
}

// must hold mu
func (l *Lock) setRelayFault(fault bool) {
	l.relayFault = fault
	l.publishFault()
}

// must hold mu
func (l *Lock) publishFault() {
	if l.Device == nil {
		return
	}
	if l.relayFault || l.pingFault {
		l.Device.Lock.StatusFault.SetValue(characteristic.StatusFaultGeneralFault)
	} else {
		l.Device.Lock.StatusFault.SetValue(characteristic.StatusFaultNoFault)
	}
}

// push sends both characteristics to HomeKit; must hold mu
func (l *Lock) push() {
	if l.Device == nil {
		return
	}
	if l.target {
		l.Device.Lock.LockTargetState.SetValue(characteristic.LockTargetStateSecured)
	} else {
		l.Device.Lock.LockTargetState.SetValue(characteristic.LockTargetStateUnsecured)
	}
	if l.current {
		l.Device.Lock.LockCurrentState.SetValue(characteristic.LockCurrentStateSecured)
	} else {
		l.Device.Lock.LockCurrentState.SetValue(characteristic.LockCurrentStateUnsecured)
	}
}

// must hold mu; OnChange has to hand off anything slow
func (l *Lock) changed(secured bool) {
	if l.OnChange != nil {
		l.OnChange(secured)
	}
}

func stateName(secured bool) string {
	if secured {
		return "secured"
	}
	return "unsecured"
}

package tfhc

import (
	"path/filepath"
	"sort"
	"sync"

	tfaccessory "github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/platform"

	"github.com/brutella/hc"
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/log"
	"github.com/brutella/hc/util"
	"github.com/pkg/errors"
)

// HCPlatform is the platform handle
type HCPlatform struct {
	Running bool
}

type hmu struct {
	mu  sync.Mutex
	hcs map[string]*tfaccessory.TFAccessory
}

var registered = hmu{hcs: make(map[string]*tfaccessory.TFAccessory)}

// Startup is called by the platform bootstrap
func (h *HCPlatform) Startup(c *config.Config) platform.Control {
	h.Running = true
	return h
}

// StartHC is called after all devices are registered to start operation
func StartHC(c *config.Config) error {
	storage, err := util.NewFileStorage(filepath.Join(c.ConfigDir, "serials"))
	if err != nil {
		return errors.Wrap(err, "unable to get storage")
	}
	serial := c.ID
	if serial == "" {
		serial = util.GetSerialNumberForAccessoryName("PiDoorRoot", storage)
	}

	root := accessory.NewBridge(accessory.Info{
		Name:             c.Name,
		ID:               1,
		SerialNumber:     serial,
		Manufacturer:     "hmenzagh.eu",
		Model:            "PiDoor",
		FirmwareRevision: "0.1.0",
	})
	root.Accessory.OnIdentify(func() {
		log.Info.Printf("bridge root identify called: %+v", root.Accessory)
	})

	// all the other registered things
	transport, err := hc.NewIPTransport(c.HCConfig, root.Accessory, Accessories()...)
	if err != nil {
		return errors.Wrap(err, "could not create IP transport")
	}

	hc.OnTermination(func() {
		<-transport.Stop()
	})
	go transport.Start()
	uri, _ := transport.XHMURI()
	log.Info.Printf("add this bridge with: %s", uri)
	return nil
}

// Accessories returns the hc side of every registered accessory, in name order
// so the bridge hands out stable aids
func Accessories() []*accessory.Accessory {
	registered.mu.Lock()
	defer registered.mu.Unlock()

	names := make([]string, 0, len(registered.hcs))
	for n := range registered.hcs {
		names = append(names, n)
	}
	sort.Strings(names)

	values := make([]*accessory.Accessory, 0, len(names))
	for _, n := range names {
		values = append(values, registered.hcs[n].Accessory)
	}
	return values
}

// Shutdown is called at process teardown
func (h *HCPlatform) Shutdown() platform.Control {
	h.Running = false
	return h
}

// AddAccessory registers a device with HC
func (h *HCPlatform) AddAccessory(a *tfaccessory.TFAccessory) error {
	// catch devices that didn't get set up properly
	if a.Accessory == nil {
		return errors.Errorf("accessory unset: %v", a.Info)
	}

	a.Accessory.OnIdentify(func() {
		log.Info.Printf("identify called for [%s]: %+v", a.Name, a.Accessory)
		for _, service := range a.Accessory.GetServices() {
			log.Info.Printf("service: %+v", service)
			for _, char := range service.GetCharacteristics() {
				log.Info.Printf("characteristic : %+v", char)
			}
		}
	})

	registered.mu.Lock()
	registered.hcs[a.Name] = a
	registered.mu.Unlock()
	return nil
}

// GetAccessory looks up a device by name -- you probably want the platform's version, not this
func (h *HCPlatform) GetAccessory(name string) (*tfaccessory.TFAccessory, bool) {
	registered.mu.Lock()
	defer registered.mu.Unlock()
	a, ok := registered.hcs[name]
	return a, ok
}

// Background runs the various background tasks: none for HC
func (h *HCPlatform) Background() {
	// nothing to do
}

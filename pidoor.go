package pidoor

import (
	"github.com/cloudkucooland/pidoor/accessory"
	"github.com/cloudkucooland/pidoor/config"
	"github.com/cloudkucooland/pidoor/door"
	tfhc "github.com/cloudkucooland/pidoor/homecontrol"
	"github.com/cloudkucooland/pidoor/platform"
	"github.com/cloudkucooland/pidoor/tfhttp"

	"github.com/pkg/errors"
)

// BootstrapPlatforms sets up all the platforms
func BootstrapPlatforms(c *config.Config) {
	config.Set(c)

	platform.RegisterPlatform("HomeControl", &tfhc.HCPlatform{})
	platform.RegisterPlatform("HTTP", &tfhttp.Platform{})
	platform.RegisterPlatform(door.Name, &door.Platform{})

	platform.StartupAllPlatforms(c)
}

// AddAccessory is a wrapper to each platform's AddAccessory, no need to expose each platform to the daemon
func AddAccessory(a *accessory.TFAccessory) error {
	if a.Platform == "" {
		return errors.Errorf("accessory platform unset: %s", a.Name)
	}

	p, ok := platform.GetPlatform(a.Platform)
	if !ok {
		return errors.Errorf("unknown accessory platform [%s] for %s", a.Platform, a.Name)
	}

	return p.AddAccessory(a)
}

// StartHC is just a wrapper, no need to expose tfhc to the daemon
func StartHC(c *config.Config) error {
	return tfhc.StartHC(c)
}

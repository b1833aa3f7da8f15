package config

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/brutella/hc"
	"github.com/pkg/errors"
)

// Config is the primary daemon configuration...
type Config struct {
	ConfigDir    string    // passed in from CLI
	ConfigFile   string    // server.json
	HTTPAddress  string    // net.Dial address format, :port is good enough
	Name         string    // what this bridge shows as
	ID           string    // displayed serial number -- if you run multiple instances, make sure each has a distinct ID
	HCConfig     hc.Config // base HomeControl configuration
	RelayTimeout int       // (seconds) how long to wait for the relay to answer -- unset/0 uses 10
	PingRate     int       // (seconds) how frequently to ping relay hosts -- 0 to disable
}

var runningConfig *Config

// Get a pointer to the global config
func Get() *Config {
	return runningConfig
}

// should only be called by the bootstrap
func Set(c *Config) {
	runningConfig = c
}

// Load reads server.json (or whatever file) from dir
func Load(dir string, file string) (*Config, error) {
	fulldir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get config directory %s", dir)
	}
	cfd := filepath.Join(fulldir, file)
	raw, err := ioutil.ReadFile(cfd)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open config %s", cfd)
	}

	var conf Config
	if err := json.Unmarshal(raw, &conf); err != nil {
		return nil, errors.Wrapf(err, "json un-marshal failed for %s", cfd)
	}

	conf.ConfigDir = fulldir
	conf.ConfigFile = cfd
	if conf.Name == "" {
		conf.Name = "PiDoor"
	}
	if conf.RelayTimeout <= 0 {
		conf.RelayTimeout = 10
	}
	return &conf, nil
}

// AccessoryDir is where the per-accessory files live
func (c *Config) AccessoryDir() string {
	return filepath.Join(c.ConfigDir, "accessories")
}

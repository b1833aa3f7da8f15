package accessory

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"

	hcaccessory "github.com/brutella/hc/accessory"
	"github.com/cloudkucooland/pidoor/action"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

// fileConfig is what lives in config/accessories/<name>.(json|yaml)
type fileConfig struct {
	Platform    string           `json:"platform" yaml:"platform" default:"PiDoor" validate:"required"`
	Name        string           `json:"name" yaml:"name"`
	URL         string           `json:"url" yaml:"url" validate:"required"`
	Port        int              `json:"port" yaml:"port" validate:"min=0,max=65535"`
	Secret      string           `json:"secret" yaml:"secret"`
	RelockDelay int              `json:"relockDelay" yaml:"relockDelay" default:"5" validate:"min=1"`
	Info        hcaccessory.Info `json:"info" yaml:"info"`
	Actions     []action.Action  `json:"actions" yaml:"actions"`
}

var validate = validator.New()

// Load reads one accessory config file; the file name (sans extension) becomes the internal name
func Load(file string) (*TFAccessory, error) {
	raw, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read accessory config")
	}

	base := filepath.Base(file)
	ext := strings.ToLower(filepath.Ext(base))
	return Parse(raw, strings.TrimSuffix(base, filepath.Ext(base)), ext)
}

// Parse decodes an accessory config; ext selects the format (.json, .yaml, .yml)
func Parse(raw []byte, name string, ext string) (*TFAccessory, error) {
	var fc fileConfig
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &fc); err != nil {
			return nil, errors.Wrapf(err, "json un-marshal failed for [%s]", name)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, errors.Wrapf(err, "yaml un-marshal failed for [%s]", name)
		}
	default:
		return nil, errors.Errorf("unsupported accessory config format %q for [%s]", ext, name)
	}

	if err := defaults.Set(&fc); err != nil {
		return nil, errors.Wrapf(err, "failed to set defaults for [%s]", name)
	}
	if err := validate.Struct(&fc); err != nil {
		return nil, errors.Wrapf(err, "invalid accessory config [%s]", name)
	}

	a := TFAccessory{
		Platform:    fc.Platform,
		Name:        name,
		URL:         fc.URL,
		Port:        fc.Port,
		Secret:      fc.Secret,
		RelockDelay: fc.RelockDelay,
		Info:        fc.Info,
		Actions:     fc.Actions,
	}
	// "name" is the display name, the same key homebridge used
	if fc.Name != "" {
		a.Info.Name = fc.Name
	}
	if a.Info.Name == "" {
		a.Info.Name = name
	}
	return &a, nil
}

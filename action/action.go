package action

// Action is run when the lock it is attached to reaches TriggerState
type Action struct {
	// don't need to store the source device since this is linked
	TriggerState   string `json:"trigger" yaml:"trigger"`   // Unsecured or Secured
	TargetPlatform string `json:"platform" yaml:"platform"` // PiDoor
	TargetDevice   string `json:"device" yaml:"device"`     // accessory name
	Verb           string `json:"verb" yaml:"verb"`         // per-platform specific: Unlock, Lock
	Value          string `json:"value" yaml:"value"`       // per-platform specific
}

// see runner for running actions -- circular imports suck

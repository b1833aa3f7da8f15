package devices

import (
	"github.com/brutella/hc/accessory"
	"github.com/brutella/hc/characteristic"
	"github.com/brutella/hc/service"
)

// DoorLock is a relay-driven door strike: a single LockMechanism
type DoorLock struct {
	*accessory.Accessory
	Lock *DoorLockSvc
}

func NewDoorLock(info accessory.Info) *DoorLock {
	acc := DoorLock{}
	acc.Accessory = accessory.New(info, accessory.TypeDoorLock)

	acc.Lock = NewDoorLockSvc()
	acc.AddService(acc.Lock.Service)

	return &acc
}

// DoorLockSvc is service.LockMechanism plus a fault flag for an unreachable relay
type DoorLockSvc struct {
	*service.Service

	LockCurrentState *characteristic.LockCurrentState
	LockTargetState  *characteristic.LockTargetState
	StatusFault      *characteristic.StatusFault
}

func NewDoorLockSvc() *DoorLockSvc {
	svc := DoorLockSvc{}
	svc.Service = service.New(service.TypeLockMechanism)

	svc.LockCurrentState = characteristic.NewLockCurrentState()
	svc.AddCharacteristic(svc.LockCurrentState.Characteristic)
	svc.LockCurrentState.SetValue(characteristic.LockCurrentStateSecured)

	svc.LockTargetState = characteristic.NewLockTargetState()
	svc.AddCharacteristic(svc.LockTargetState.Characteristic)
	svc.LockTargetState.SetValue(characteristic.LockTargetStateSecured)

	svc.StatusFault = characteristic.NewStatusFault()
	svc.AddCharacteristic(svc.StatusFault.Characteristic)
	svc.StatusFault.SetValue(characteristic.StatusFaultNoFault)

	return &svc
}

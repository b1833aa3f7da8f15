package door

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/brutella/hc/characteristic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRelays(t *testing.T) {
	p := testPlatform()
	a := newAPI(t)
	require.NoError(t, p.AddAccessory(newTestAccessory(a, t, "Pinged")))
	l, _ := GetLock("Pinged")

	saved := probe
	defer func() { probe = saved }()

	var hosts []string
	probe = func(host string, timeout time.Duration) bool {
		hosts = append(hosts, host)
		return false
	}
	checkRelays(time.Second)
	assert.Contains(t, hosts, "127.0.0.1")
	assert.True(t, l.Status().Fault)
	assert.Equal(t, characteristic.StatusFaultGeneralFault, l.Device.Lock.StatusFault.GetValue())

	probe = func(string, time.Duration) bool { return true }
	checkRelays(time.Second)
	assert.False(t, l.Status().Fault)
}

func TestMonitorStops(t *testing.T) {
	saved := probe
	defer func() { probe = saved }()

	calls := make(chan struct{}, 100)
	probe = func(string, time.Duration) bool {
		calls <- struct{}{}
		return true
	}

	p := testPlatform()
	a := newAPI(t)
	require.NoError(t, p.AddAccessory(newTestAccessory(a, t, "Monitored")))

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		monitor(10*time.Millisecond, done)
		close(finished)
	}()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("monitor never probed")
	}
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestRelayFaultSurvivesPing(t *testing.T) {
	p := testPlatform()
	a := newAPI(t)
	a.setStatus(http.StatusInternalServerError)
	require.NoError(t, p.AddAccessory(newTestAccessory(a, t, "FaultMix")))
	l, _ := GetLock("FaultMix")

	saved := probe
	defer func() { probe = saved }()

	require.Error(t, l.Unlock(context.Background()))
	require.True(t, l.Status().Fault)

	// host answers pings, but the relay has not opened since it failed
	probe = func(string, time.Duration) bool { return true }
	checkRelays(time.Second)
	assert.True(t, l.Status().Fault)
	assert.Equal(t, characteristic.StatusFaultGeneralFault, l.Device.Lock.StatusFault.GetValue())
	assert.Equal(t, 1, a.openCount())

	// a good open clears it
	a.setStatus(http.StatusOK)
	require.NoError(t, l.Unlock(context.Background()))
	assert.False(t, l.Status().Fault)
	assert.Equal(t, characteristic.StatusFaultNoFault, l.Device.Lock.StatusFault.GetValue())
	l.Secure()
}

func TestPingFaultSurvivesOpen(t *testing.T) {
	p := testPlatform()
	a := newAPI(t)
	require.NoError(t, p.AddAccessory(newTestAccessory(a, t, "PingMix")))
	l, _ := GetLock("PingMix")

	saved := probe
	defer func() { probe = saved }()

	probe = func(string, time.Duration) bool { return false }
	checkRelays(time.Second)
	require.True(t, l.Status().Fault)

	// the relay opening does not say anything about pings
	require.NoError(t, l.Unlock(context.Background()))
	assert.True(t, l.Status().Fault)
	assert.Equal(t, characteristic.StatusFaultGeneralFault, l.Device.Lock.StatusFault.GetValue())
	l.Secure()

	probe = func(string, time.Duration) bool { return true }
	checkRelays(time.Second)
	assert.False(t, l.Status().Fault)
}

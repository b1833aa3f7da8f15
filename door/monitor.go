package door

import (
	"time"

	"github.com/brutella/hc/log"
	"github.com/go-ping/ping"
)

type hoster interface {
	Host() string
}

// probe is swapped out in tests
var probe = pingHost

func monitor(rate time.Duration, done chan struct{}) {
	t := time.NewTicker(rate)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			checkRelays(rate / 2)
		}
	}
}

// checkRelays pings every relay host and raises StatusFault on the ones that do not answer
func checkRelays(timeout time.Duration) {
	for _, l := range Locks() {
		h, ok := l.opener.(hoster)
		if !ok {
			continue
		}
		up := probe(h.Host(), timeout)
		if !up {
			log.Info.Printf("[%s] relay %s is not answering pings", l.Name, h.Host())
		}
		l.SetPingFault(!up)
	}
}

func pingHost(host string, timeout time.Duration) bool {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		log.Info.Println(err.Error())
		return false
	}
	// unprivileged UDP ping, no CAP_NET_RAW needed
	pinger.SetPrivileged(false)
	pinger.Count = 1
	pinger.Timeout = timeout

	if err := pinger.Run(); err != nil {
		log.Info.Println(err.Error())
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

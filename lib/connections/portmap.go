package connections

import (
	"time"

	"github.com/jackpal/gateway"
	natpmp "github.com/jackpal/go-nat-pmp"
)

// mappingLifetime is how long a NAT-PMP mapping is requested for; we renew
// well before it expires.
const mappingLifetime = 3600

// TryPortMap attempts a best-effort NAT-PMP mapping of externalPort ->
// internalPort on the default gateway, so direct dials succeed more often
// from behind a home router. Failure is never fatal: the firewall-pierce
// establishment mode (spec.md §4.4) covers us regardless.
func TryPortMap(internalPort int) (externalPort int, ok bool) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		l.Debugln("portmap: gateway discovery failed:", err)
		return 0, false
	}
	client := natpmp.NewClient(gw)
	res, err := client.AddPortMapping("tcp", internalPort, internalPort, mappingLifetime)
	if err != nil {
		l.Debugln("portmap: NAT-PMP mapping failed:", err)
		return 0, false
	}
	l.Infof("portmap: mapped external port %d -> internal %d via %s", res.MappedExternalPort, internalPort, gw)
	return int(res.MappedExternalPort), true
}

// RenewPortMap re-requests the mapping every half lifetime from a goroutine
// it starts itself; the returned func stops that goroutine.
func RenewPortMap(internalPort int) (stop func()) {
	ticker := time.NewTicker(mappingLifetime / 2 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				TryPortMap(internalPort)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

package connections

import (
	"github.com/thejerf/suture/v4"
)

// NewSupervisor returns a root supervisor for the connection layer,
// matching the teacher's own use of suture in cmd/syncthing to supervise its
// service tree. The coordinator adds the inbound acceptor to it as a
// suture.Service; peer dialogs run as plain goroutines outside the tree.
// The Spec sets only an event hook, so suture's default restart policy
// applies: a service whose Serve fails is restarted with backoff.
func NewSupervisor(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: func(e suture.Event) {
			l.Debugln("supervisor event:", e.String())
		},
	})
}

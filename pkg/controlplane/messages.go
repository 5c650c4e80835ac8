package controlplane

import "time"

// ReloadRequest asks the running engine to reload from the configuration document at
// ConfigPath (spec §6's "reload" control-channel operation; mirrors SIGHUP's
// "reload from the original config path", but callable without a signal).
type ReloadRequest struct {
	ConfigPath string
}

// ReloadResponse reports the outcome of a ReloadRequest. A document that fails to
// load reports only Error; one that fails validation reports Generation and Error
// with empty key lists; otherwise the key lists are filled in whether or not the
// reload was applied.
type ReloadResponse struct {
	Generation uint64
	Added      []string
	Changed    []string
	Removed    []string
	Unchanged  []string
	Applied    bool
	Error      string
}

// ShutdownRequest asks the engine to begin graceful shutdown with the given deadline
// per component (spec §5's shutdown broadcast, reachable here instead of only via
// SIGINT/SIGTERM).
type ShutdownRequest struct {
	DeadlineMillis int64
}

type ShutdownResponse struct {
	Accepted bool
}

// StatusRequest has no fields; it exists so the RPC's handler signature matches the
// rest of the service's unary calls.
type StatusRequest struct{}

// ComponentStatus is one node's reported state in a StatusResponse.
type ComponentStatus struct {
	Key      string
	Kind     string
	State    string
	Healthy  bool
	Optional bool
}

// StatusResponse reports every component's current lifecycle state (spec §6's
// "status" control-channel operation). Server's status handler does not fill in
// Generation, which stays zero.
type StatusResponse struct {
	Generation uint64
	Components []ComponentStatus
}

// TapRequest starts a live event-sample stream from Component (spec §6's "tap:
// stream live events from a component output for debugging"). An empty Component
// subscribes to every producer in the topology.
type TapRequest struct {
	Component string
}

// TapSample is one event streamed back to a Tap caller: never the full event body,
// only the short preview a producer's Multiplexer already renders for the internal
// tap bus (pkg/events.TapEvent).
type TapSample struct {
	ID        string
	Component string
	Variant   string
	Timestamp time.Time
	Preview   string
}

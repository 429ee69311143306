package engine

import "context"

// Container represents one stack container's runtime state.
type Container struct {
	ID      string // Container ID
	Name    string // Container name (leading slash stripped)
	Service string // Compose service name from container labels
	Image   string // Image reference
	State   string // Lifecycle state, e.g. "running", "exited"
	Status  string // Human-readable status line from the daemon
}

// Running reports whether the container is in the running state.
func (c Container) Running() bool {
	return c.State == "running"
}

// PruneSummary aggregates the results of pruning unused resources.
type PruneSummary struct {
	ContainersDeleted int
	VolumesDeleted    int
	NetworksDeleted   int
	SpaceReclaimed    uint64
}

// Client defines the interface for Docker Engine interactions.
// This interface enables mocking in tests.
type Client interface {
	// Ping validates connectivity to the Docker daemon.
	Ping(ctx context.Context) error

	// ListContainers returns the containers belonging to the managed stack,
	// including stopped ones.
	ListContainers(ctx context.Context) ([]Container, error)

	// ServiceLogs returns the last tail lines of the named service's log
	// stream as plain text.
	ServiceLogs(ctx context.Context, service string, tail int) (string, error)

	// Prune removes stopped containers, unused volumes, and unused networks.
	Prune(ctx context.Context) (PruneSummary, error)

	// Close releases resources associated with the client.
	Close() error
}

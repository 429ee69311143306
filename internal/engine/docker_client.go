package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const defaultAPITimeout = 30 * time.Second

// Compose labels the engine attaches to containers it starts for a project.
const (
	projectLabel = "com.docker.compose.project"
	serviceLabel = "com.docker.compose.service"
)

// dockerAPI defines the subset of Docker client operations used by
// DockerClient. This interface enables unit testing without a real Docker
// daemon by allowing mock implementations to be injected.
type dockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainersPrune(ctx context.Context, pruneFilters filters.Args) (types.ContainersPruneReport, error)
	VolumesPrune(ctx context.Context, pruneFilters filters.Args) (types.VolumesPruneReport, error)
	NetworksPrune(ctx context.Context, pruneFilters filters.Args) (types.NetworksPruneReport, error)
	Close() error
}

// Ensure the official Docker client satisfies the interface at compile time.
var _ dockerAPI = (*client.Client)(nil)

// DockerClient implements Client using the official Docker Go SDK, scoped to
// one compose project.
type DockerClient struct {
	api     dockerAPI
	project string
	timeout time.Duration
}

// NewDockerClient initializes a Docker client for the given API host and
// compose project. An empty host falls back to the SDK's environment defaults.
func NewDockerClient(host, project string, timeout time.Duration) (*DockerClient, error) {
	if project == "" {
		return nil, errors.New("project name must not be empty")
	}
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}

	httpClient := &http.Client{Timeout: timeout}

	opts := []client.Opt{
		client.WithAPIVersionNegotiation(),
		client.WithHTTPClient(httpClient),
	}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	api, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}

	return &DockerClient{
		api:     api,
		project: project,
		timeout: timeout,
	}, nil
}

// Ping validates connectivity to the Docker daemon.
func (c *DockerClient) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("docker client is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.Ping(ctx)
	return err
}

// ListContainers returns all containers labeled with the managed project.
func (c *DockerClient) ListContainers(ctx context.Context) ([]Container, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	listed, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", projectLabel+"="+c.project)),
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	containers := make([]Container, 0, len(listed))
	for _, item := range listed {
		name := ""
		if len(item.Names) > 0 {
			name = strings.TrimPrefix(item.Names[0], "/")
		}
		containers = append(containers, Container{
			ID:      item.ID,
			Name:    name,
			Service: item.Labels[serviceLabel],
			Image:   item.Image,
			State:   item.State,
			Status:  item.Status,
		})
	}

	return containers, nil
}

// ServiceLogs fetches the log tail for the named compose service. The engine
// multiplexes stdout and stderr on one stream; both are demuxed into the
// returned text.
func (c *DockerClient) ServiceLogs(ctx context.Context, service string, tail int) (string, error) {
	containers, err := c.ListContainers(ctx)
	if err != nil {
		return "", err
	}

	var target *Container
	for i := range containers {
		if containers[i].Service == service {
			target = &containers[i]
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("no container found for service %q in project %q", service, c.project)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reader, err := c.api.ContainerLogs(ctx, target.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return "", fmt.Errorf("fetch logs for %q: %w", service, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, reader); err != nil {
		return "", fmt.Errorf("read logs for %q: %w", service, err)
	}

	return buf.String(), nil
}

// Prune removes stopped containers, unused volumes, and unused networks.
func (c *DockerClient) Prune(ctx context.Context) (PruneSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var summary PruneSummary

	containersReport, err := c.api.ContainersPrune(ctx, filters.Args{})
	if err != nil {
		return summary, fmt.Errorf("prune containers: %w", err)
	}
	summary.ContainersDeleted = len(containersReport.ContainersDeleted)
	summary.SpaceReclaimed += containersReport.SpaceReclaimed

	volumesReport, err := c.api.VolumesPrune(ctx, filters.Args{})
	if err != nil {
		return summary, fmt.Errorf("prune volumes: %w", err)
	}
	summary.VolumesDeleted = len(volumesReport.VolumesDeleted)
	summary.SpaceReclaimed += volumesReport.SpaceReclaimed

	networksReport, err := c.api.NetworksPrune(ctx, filters.Args{})
	if err != nil {
		return summary, fmt.Errorf("prune networks: %w", err)
	}
	summary.NetworksDeleted = len(networksReport.NetworksDeleted)

	return summary, nil
}

// Close releases resources associated with the client.
func (c *DockerClient) Close() error {
	if c == nil || c.api == nil {
		return nil
	}
	return c.api.Close()
}

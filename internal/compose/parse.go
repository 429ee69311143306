package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// Descriptor is the orchestrator's view of the stack definition. Only the
// pieces referenced by string identity are kept: service names, images, and
// published ports. The compose file itself stays owned by docker compose.
type Descriptor struct {
	Project  string
	Services map[string]Service
}

// Service captures the fields the orchestrator reports on.
type Service struct {
	Image          string
	ContainerName  string
	PublishedPorts []string
}

// ServiceNames returns the service names in sorted order.
func (d Descriptor) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for name := range d.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFile loads and parses the compose file at path.
func ParseFile(ctx context.Context, path, project string) (Descriptor, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read compose file: %w", err)
	}
	return Parse(ctx, body, project)
}

// Parse parses compose content into a Descriptor.
func Parse(ctx context.Context, body []byte, project string) (Descriptor, error) {
	if len(body) == 0 {
		return Descriptor{}, errors.New("compose body is empty")
	}

	details := types.ConfigDetails{
		WorkingDir: ".",
		ConfigFiles: []types.ConfigFile{
			{
				Filename: "compose.yml",
				Content:  body,
			},
		},
		Environment: types.Mapping{},
	}

	loaded, err := loader.LoadWithContext(ctx, details, func(opts *loader.Options) {
		opts.SetProjectName(project, false)
		opts.SkipValidation = true
	})
	if err != nil {
		return Descriptor{}, fmt.Errorf("load compose: %w", err)
	}
	if len(loaded.Services) == 0 {
		return Descriptor{}, errors.New("compose has no services")
	}

	descriptor := Descriptor{
		Project:  project,
		Services: make(map[string]Service, len(loaded.Services)),
	}

	for name, service := range loaded.Services {
		if service.Image == "" && service.Build == nil {
			return Descriptor{}, fmt.Errorf("service %q has neither image nor build", name)
		}

		descriptor.Services[name] = Service{
			Image:          service.Image,
			ContainerName:  service.ContainerName,
			PublishedPorts: publishedPorts(service.Ports),
		}
	}

	return descriptor, nil
}

func publishedPorts(ports []types.ServicePortConfig) []string {
	published := make([]string, 0, len(ports))
	for _, port := range ports {
		if port.Published == "" {
			continue
		}
		published = append(published, port.Published)
	}
	sort.Strings(published)
	return published
}

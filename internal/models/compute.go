package models

import "fmt"

type GrantKind string

const (
	// GrantRemoteSession allows agent-based remote sessions to the
	// host; no direct network login port is ever opened.
	GrantRemoteSession GrantKind = "remote-session"
	// GrantStoreRead allows read-only access to the deployment
	// artifact store.
	GrantStoreRead GrantKind = "artifact-store-read"
)

type Grant struct {
	Kind     GrantKind
	Resource string
}

type Identity struct {
	Name   string
	Grants []Grant
}

func (i Identity) Validate() error {
	for _, g := range i.Grants {
		switch g.Kind {
		case GrantRemoteSession, GrantStoreRead:
		default:
			return fmt.Errorf("identity %s: unknown grant kind %q", i.Name, g.Kind)
		}
	}
	return nil
}

type Tag struct {
	Key   string
	Value string
}

// ComputeSpec is the one long-running host per environment. The
// provisioning engine replaces (never mutates) the instance when its
// image, class or startup input changes.
type ComputeSpec struct {
	Name            string
	Segment         SegmentID
	InstanceClass   string
	MachineImage    string
	PermissionGroup string
	Identity        Identity

	// DiscoveryTag lets the external deployment pipeline locate the
	// instance without tracking its identifier.
	DiscoveryTag Tag

	// UserData is the rendered host bootstrap script.
	UserData string
}

func (c ComputeSpec) Validate() error {
	if c.UserData == "" {
		return fmt.Errorf("compute %s: empty bootstrap input", c.Name)
	}
	if c.DiscoveryTag.Key == "" || c.DiscoveryTag.Value == "" {
		return fmt.Errorf("compute %s: discovery tag is required", c.Name)
	}
	return c.Identity.Validate()
}

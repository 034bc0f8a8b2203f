package models

import "fmt"

type NetworkID string

type SegmentID string

type SegmentKind string

const (
	SegmentPublic  SegmentKind = "public"
	SegmentPrivate SegmentKind = "private"
)

// EgressMode describes how a segment reaches the internet.
type EgressMode string

const (
	// EgressDirect routes outbound traffic through the network's
	// internet gateway.
	EgressDirect EgressMode = "direct"
	// EgressTranslated routes outbound traffic through an
	// address-translating gateway; no inbound path exists.
	EgressTranslated EgressMode = "translated"
)

type Protocol uint8

const (
	TCP Protocol = iota + 1
	UDP
)

func (p Protocol) String() string {
	if p == UDP {
		return "udp"
	}
	return "tcp"
}

type NetworkSegment struct {
	ID            SegmentID
	Kind          SegmentKind
	CIDR          string
	FailureDomain string
	Egress        EgressMode
}

// EgressGateway is the translated-egress point shared by one
// public/private segment pair. It lives in the public segment.
type EgressGateway struct {
	Name          string
	FailureDomain string
	PublicSegment SegmentID
}

type Network struct {
	Name         string
	AddressSpace string

	// External is set when the run was supplied an existing network
	// resolved by identifier instead of building one.
	External   bool
	ExternalID string

	Segments []NetworkSegment
	Gateways []EgressGateway
}

func (n Network) SegmentsOfKind(kind SegmentKind) []NetworkSegment {
	result := make([]NetworkSegment, 0, len(n.Segments))
	for _, seg := range n.Segments {
		if seg.Kind == kind {
			result = append(result, seg)
		}
	}
	return result
}

// Peer is one side of a permission edge: the open internet, an address
// range, or a named permission-group identity.
type Peer struct {
	AnyAddress bool   `json:"any_address,omitempty"`
	CIDR       string `json:"cidr,omitempty"`
	Identity   string `json:"identity,omitempty"`
}

func AnyAddressPeer() Peer { return Peer{AnyAddress: true} }

func CIDRPeer(cidr string) Peer { return Peer{CIDR: cidr} }

func IdentityPeer(ref string) Peer { return Peer{Identity: ref} }

func (p Peer) String() string {
	switch {
	case p.AnyAddress:
		return "any"
	case p.Identity != "":
		return p.Identity
	}
	return p.CIDR
}

// PermissionEdge is a directed allow rule. Everything not allowed by an
// edge is denied.
type PermissionEdge struct {
	Source      Peer
	Destination Peer
	Port        uint16
	Proto       Protocol
}

// PermissionGroup is a named set of inbound allow rules attached to a
// resource; other edges may reference it as an identity peer.
type PermissionGroup struct {
	Name    string
	Inbound []PermissionEdge
}

func (g PermissionGroup) Validate() error {
	for _, edge := range g.Inbound {
		if !edge.Source.AnyAddress && edge.Source.CIDR == "" && edge.Source.Identity == "" {
			return fmt.Errorf("permission group %s: edge with empty source", g.Name)
		}
	}
	return nil
}

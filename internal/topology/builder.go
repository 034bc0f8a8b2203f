package topology

import (
	"fmt"
	"net/netip"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// redundancyFactor is the number of independent failure domains. Fixed
// at 2: every additional domain adds a recurring translated-egress
// charge, and two already removes the single-domain failure mode.
const redundancyFactor = 2

var failureDomains = [redundancyFactor]string{"a", "b"}

const segmentPrefixBits = 20

// Build derives the segmented network for one environment: one public
// and one private segment per failure domain, the private one routing
// outbound traffic through a translated-egress gateway placed in its
// public twin. The compute resource always lands in a private segment;
// only the entry point lives in public ones.
func Build(env models.Environment, addressSpace string) (models.Network, error) {
	prefix, err := netip.ParsePrefix(addressSpace)
	if err != nil {
		return models.Network{}, fmt.Errorf("failed to parse address space: %w", err)
	}
	if !prefix.Addr().Is4() || prefix.Bits() != 16 {
		return models.Network{}, fmt.Errorf("address space must be an IPv4 /16, got %s", addressSpace)
	}

	network := models.Network{
		Name:         fmt.Sprintf("websocketapi-%s", env),
		AddressSpace: prefix.Masked().String(),
		Segments:     make([]models.NetworkSegment, 0, 2*redundancyFactor),
		Gateways:     make([]models.EgressGateway, 0, redundancyFactor),
	}

	for i, domain := range failureDomains {
		publicSeg := models.NetworkSegment{
			ID:            models.SegmentID(fmt.Sprintf("%s-public-%s", network.Name, domain)),
			Kind:          models.SegmentPublic,
			CIDR:          childCIDR(prefix, i),
			FailureDomain: domain,
			Egress:        models.EgressDirect,
		}
		privateSeg := models.NetworkSegment{
			ID:            models.SegmentID(fmt.Sprintf("%s-private-%s", network.Name, domain)),
			Kind:          models.SegmentPrivate,
			CIDR:          childCIDR(prefix, redundancyFactor+i),
			FailureDomain: domain,
			Egress:        models.EgressTranslated,
		}
		network.Segments = append(network.Segments, publicSeg, privateSeg)
		network.Gateways = append(network.Gateways, models.EgressGateway{
			Name:          fmt.Sprintf("%s-nat-%s", network.Name, domain),
			FailureDomain: domain,
			PublicSegment: publicSeg.ID,
		})
	}
	return network, nil
}

// childCIDR carves the i-th /20 out of a /16.
func childCIDR(parent netip.Prefix, i int) string {
	addr := parent.Masked().Addr().As4()
	addr[2] += byte(i << (24 - segmentPrefixBits))
	return netip.PrefixFrom(netip.AddrFrom4(addr), segmentPrefixBits).String()
}

// PermissionGroups returns the two permission groups of the topology:
// the entry group admitting the service ports from any address, and the
// service group admitting the forwarded port only from the entry
// group's identity. The private side never names an open-internet
// source.
func PermissionGroups(env models.Environment, forwardedPort uint16) (entry, service models.PermissionGroup) {
	entryName := fmt.Sprintf("websocketapi-%s-entry", env)
	serviceName := fmt.Sprintf("websocketapi-%s-service", env)
	entry = models.PermissionGroup{
		Name: entryName,
		Inbound: []models.PermissionEdge{
			{Source: models.AnyAddressPeer(), Destination: models.IdentityPeer(entryName), Port: 80, Proto: models.TCP},
			{Source: models.AnyAddressPeer(), Destination: models.IdentityPeer(entryName), Port: 443, Proto: models.TCP},
		},
	}
	service = models.PermissionGroup{
		Name: serviceName,
		Inbound: []models.PermissionEdge{
			{Source: models.IdentityPeer(entryName), Destination: models.IdentityPeer(serviceName), Port: forwardedPort, Proto: models.TCP},
		},
	}
	return entry, service
}

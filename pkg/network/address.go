/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package network

import (
	"fmt"
	"net"
	"regexp"

	netutils "k8s.io/utils/net"
)

// Field messages.
const (
	MsgInvalidCIDR          = "Invalid CIDR"
	MsgNetworkTooLarge      = "Network is too large"
	MsgNetworkTooSmall      = "Network is too small"
	MsgInvalidIP            = "Invalid IP address"
	MsgNotInCIDR            = "IP address does not match the network CIDR"
	MsgInvalidIPRange       = "Start IP address must be less than end IP address"
	MsgEmptyIPRange         = "Please specify at least one IP range"
	MsgIPRangesIntersection = "IP range intersects with another IP range"
	MsgInvalidGateway       = "Invalid gateway"
	MsgGatewayNotInCIDR     = "Gateway is not in the network CIDR"
	MsgGatewayNotHost       = "Gateway must not be the network or broadcast address"
	MsgGatewayInIPRange     = "Gateway must not be inside an IP range"
	MsgInvalidVLAN          = "Invalid VLAN ID"
	MsgInvalidName          = "Invalid name"
	MsgInvalidNameserver    = "Invalid nameserver"
	MsgFloatingNotInCIDR    = "Floating IP range is not in any public CIDR"
	MsgIDRangeOrder         = "Start ID must be less than end ID"
	MsgIDRangeTooNarrow     = "ID range must leave at least one free ID between start and end"
)

// Bounds of IPv4 prefixes accepted for networks.
const (
	MinPrefix = 2
	MaxPrefix = 30
)

// VLAN tag bounds.
const (
	MinVLAN = 1
	MaxVLAN = 4094
)

var nameRe = regexp.MustCompile(`^[a-zA-Z][\w-]*$`)

// ParseCIDR parses an IPv4 CIDR. The address part may carry host bits.
func ParseCIDR(s string) (*net.IPNet, bool) {
	_, n, err := netutils.ParseCIDRSloppy(s)
	if err != nil || !netutils.IsIPv4CIDR(n) {
		return nil, false
	}
	return n, true
}

// ParseIP parses an IPv4 address.
func ParseIP(s string) (net.IP, bool) {
	ip := netutils.ParseIPSloppy(s)
	if ip == nil || ip.To4() == nil {
		return nil, false
	}
	return ip.To4(), true
}

// ValidateCIDR returns the error message for cidr, or "".
func ValidateCIDR(cidr string) string {
	n, ok := ParseCIDR(cidr)
	if !ok {
		return MsgInvalidCIDR
	}
	ones, _ := n.Mask.Size()
	switch {
	case ones < MinPrefix:
		return MsgNetworkTooLarge
	case ones > MaxPrefix:
		return MsgNetworkTooSmall
	}
	return ""
}

// ValidateIP returns the error message for ip, or "".
func ValidateIP(ip string) string {
	if _, ok := ParseIP(ip); !ok {
		return MsgInvalidIP
	}
	return ""
}

// IPInCIDR reports whether ip lies within cidr. Unparseable input is never contained.
func IPInCIDR(ip, cidr string) bool {
	addr, ok := ParseIP(ip)
	if !ok {
		return false
	}
	n, ok := ParseCIDR(cidr)
	if !ok {
		return false
	}
	return n.Contains(addr)
}

// compareIP orders two valid addresses numerically.
func compareIP(a, b net.IP) int {
	return netutils.BigForIP(a).Cmp(netutils.BigForIP(b))
}

type span struct {
	start, end net.IP
}

func parseRange(r IPRange) (span, bool) {
	s, ok1 := ParseIP(r.Start())
	e, ok2 := ParseIP(r.End())
	return span{s, e}, ok1 && ok2
}

func (a span) intersects(b span) bool {
	return compareIP(a.start, b.end) <= 0 && compareIP(b.start, a.end) <= 0
}

func (a span) contains(ip net.IP) bool {
	return compareIP(a.start, ip) <= 0 && compareIP(ip, a.end) <= 0
}

// RangesIntersect reports whether two well-formed ranges share an address.
func RangesIntersect(a, b IPRange) bool {
	sa, ok := parseRange(a)
	if !ok {
		return false
	}
	sb, ok := parseRange(b)
	if !ok {
		return false
	}
	return sa.intersects(sb)
}

// RangeInCIDR reports whether both ends of r lie within cidr.
func RangeInCIDR(r IPRange, cidr string) bool {
	return IPInCIDR(r.Start(), cidr) && IPInCIDR(r.End(), cidr)
}

// ValidateIPRanges checks every range for well-formed endpoints, containment in
// cidr (skipped when cidr is empty) and start <= end. When all ranges are
// well-formed, ranges that overlap each other or any of existing are flagged on
// both ends. With required set, an empty list is an error on index 0.
//
// The result is indexed like ranges, or nil when every range is clean.
func ValidateIPRanges(ranges []IPRange, cidr string, existing []IPRange, required bool) RangeErrors {
	if len(ranges) == 0 {
		if required {
			return RangeErrors{{Start: MsgEmptyIPRange, End: MsgEmptyIPRange}}
		}
		return nil
	}

	errs := make(RangeErrors, len(ranges))
	spans := make([]span, len(ranges))
	for i, r := range ranges {
		errs[i].Start = validateEndpoint(r.Start(), cidr)
		errs[i].End = validateEndpoint(r.End(), cidr)
		if !errs[i].Empty() {
			continue
		}
		sp, _ := parseRange(r)
		if compareIP(sp.start, sp.end) > 0 {
			errs[i].Start = MsgInvalidIPRange
			errs[i].End = MsgInvalidIPRange
			continue
		}
		spans[i] = sp
	}
	if !errs.Empty() {
		return errs
	}

	for i := range spans {
		for _, other := range existing {
			if so, ok := parseRange(other); ok && spans[i].intersects(so) {
				errs[i] = RangeError{Start: MsgIPRangesIntersection, End: MsgIPRangesIntersection}
			}
		}
		for j := i + 1; j < len(spans); j++ {
			if spans[i].intersects(spans[j]) {
				errs[i] = RangeError{Start: MsgIPRangesIntersection, End: MsgIPRangesIntersection}
				errs[j] = RangeError{Start: MsgIPRangesIntersection, End: MsgIPRangesIntersection}
			}
		}
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

func validateEndpoint(ip, cidr string) string {
	if msg := ValidateIP(ip); msg != "" {
		return msg
	}
	if cidr != "" && !IPInCIDR(ip, cidr) {
		return MsgNotInCIDR
	}
	return ""
}

// ValidateGateway checks that gateway is a host address of cidr that lies outside
// every range in ranges.
func ValidateGateway(gateway, cidr string, ranges []IPRange) string {
	gw, ok := ParseIP(gateway)
	if !ok {
		return MsgInvalidGateway
	}
	n, ok := ParseCIDR(cidr)
	if !ok || !n.Contains(gw) {
		return MsgGatewayNotInCIDR
	}
	network, broadcast := bounds(n)
	if gw.Equal(network) || gw.Equal(broadcast) {
		return MsgGatewayNotHost
	}
	for _, r := range ranges {
		if sp, ok := parseRange(r); ok && sp.contains(gw) {
			return MsgGatewayInIPRange
		}
	}
	return ""
}

// ValidateVLAN checks a VLAN tag.
func ValidateVLAN(id int) string {
	if id < MinVLAN || id > MaxVLAN {
		return MsgInvalidVLAN
	}
	return ""
}

// ValidateName checks a Neutron network name.
func ValidateName(name string) string {
	if !nameRe.MatchString(name) {
		return MsgInvalidName
	}
	return ""
}

func bounds(n *net.IPNet) (network, broadcast net.IP) {
	network = n.IP.Mask(n.Mask).To4()
	size := netutils.RangeSize(n)
	broadcast = netutils.AddIPOffset(netutils.BigForIP(network), int(size)-1).To4()
	return network, broadcast
}

// DefaultGateway returns the first host address of cidr.
func DefaultGateway(cidr string) (string, error) {
	n, ok := ParseCIDR(cidr)
	if !ok {
		return "", fmt.Errorf("invalid cidr %q", cidr)
	}
	ip, err := netutils.GetIndexedIP(n, 1)
	if err != nil {
		return "", err
	}
	return ip.String(), nil
}

// DefaultIPRange returns the assignable range of cidr for networks using the cidr
// notation: every host address, minus the first when it is reserved for the gateway.
func DefaultIPRange(cidr string, withGateway bool) (IPRange, error) {
	n, ok := ParseCIDR(cidr)
	if !ok {
		return IPRange{}, fmt.Errorf("invalid cidr %q", cidr)
	}
	first := 1
	if withGateway {
		first = 2
	}
	size := netutils.RangeSize(n)
	if int64(first) > size-2 {
		return IPRange{}, fmt.Errorf("cidr %q has no assignable addresses", cidr)
	}
	start, err := netutils.GetIndexedIP(n, first)
	if err != nil {
		return IPRange{}, err
	}
	end, err := netutils.GetIndexedIP(n, int(size)-2)
	if err != nil {
		return IPRange{}, err
	}
	return IPRange{start.String(), end.String()}, nil
}

// AssignableRanges returns the ranges addresses are allocated from: the declared
// ip ranges, or every host address of the CIDR for the cidr notation. An invalid
// CIDR yields no ranges.
func (n *Network) AssignableRanges() []IPRange {
	if n.Meta.Notation != NotationCIDR {
		return n.IPRanges
	}
	r, err := DefaultIPRange(n.CIDR, n.Meta.UseGateway)
	if err != nil {
		return nil
	}
	return []IPRange{r}
}

// EffectiveGateway returns the declared gateway. A cidr notation network that
// uses a gateway without declaring one gets the first host address of its CIDR.
func (n *Network) EffectiveGateway() string {
	if n.Gateway != "" || n.Meta.Notation != NotationCIDR || !n.Meta.UseGateway {
		return n.Gateway
	}
	gw, err := DefaultGateway(n.CIDR)
	if err != nil {
		return ""
	}
	return gw
}

/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package network

// Notation selects how a network declares its assignable addresses.
type Notation string

const (
	// NotationCIDR derives a single range from the CIDR.
	NotationCIDR Notation = "cidr"
	// NotationIPRanges uses the explicit ip_ranges list.
	NotationIPRanges Notation = "ip_ranges"
)

// SegmentationType is the tenant network isolation mechanism.
type SegmentationType string

const (
	SegmentationVLAN SegmentationType = "vlan"
	SegmentationGRE  SegmentationType = "gre"
	SegmentationTun  SegmentationType = "tun"
)

// BaremetalNetwork is the name of the network baremetal parameters are checked against.
const BaremetalNetwork = "baremetal"

// IPRange is an inclusive [start, end] address pair.
type IPRange [2]string

// Start returns the first address of the range.
func (r IPRange) Start() string { return r[0] }

// End returns the last address of the range.
func (r IPRange) End() string { return r[1] }

// IDRange is an inclusive [start, end] segmentation id pair.
type IDRange [2]int

// Meta holds the network's static traits.
type Meta struct {
	Configurable bool     `json:"configurable" yaml:"configurable"`
	Notation     Notation `json:"notation,omitempty" yaml:"notation,omitempty"`
	UseGateway   bool     `json:"use_gateway,omitempty" yaml:"use_gateway,omitempty"`
}

// Network is one logical network of a node network group.
type Network struct {
	ID        int       `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	GroupID   int       `json:"group_id" yaml:"group_id"`
	CIDR      string    `json:"cidr,omitempty" yaml:"cidr,omitempty"`
	Gateway   string    `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	IPRanges  []IPRange `json:"ip_ranges,omitempty" yaml:"ip_ranges,omitempty"`
	VLANStart *int      `json:"vlan_start,omitempty" yaml:"vlan_start,omitempty"`
	Meta      Meta      `json:"meta" yaml:"meta"`
}

// NodeNetworkGroup partitions networks, typically per rack.
type NodeNetworkGroup struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Parameters are the cluster-wide networking parameters.
type Parameters struct {
	SegmentationType SegmentationType `json:"segmentation_type,omitempty" yaml:"segmentation_type,omitempty"`
	VLANRange        *IDRange         `json:"vlan_range,omitempty" yaml:"vlan_range,omitempty"`
	GREIDRange       *IDRange         `json:"gre_id_range,omitempty" yaml:"gre_id_range,omitempty"`
	FloatingRanges   []IPRange        `json:"floating_ranges,omitempty" yaml:"floating_ranges,omitempty"`
	DNSNameservers   []string         `json:"dns_nameservers,omitempty" yaml:"dns_nameservers,omitempty"`
	BaremetalGateway string           `json:"baremetal_gateway,omitempty" yaml:"baremetal_gateway,omitempty"`
	BaremetalRange   *IPRange         `json:"baremetal_range,omitempty" yaml:"baremetal_range,omitempty"`
	InternalCIDR     string           `json:"internal_cidr,omitempty" yaml:"internal_cidr,omitempty"`
	InternalGateway  string           `json:"internal_gateway,omitempty" yaml:"internal_gateway,omitempty"`
	InternalName     string           `json:"internal_name,omitempty" yaml:"internal_name,omitempty"`
	FloatingName     string           `json:"floating_name,omitempty" yaml:"floating_name,omitempty"`
}

// Configuration is the network configuration of a cluster.
type Configuration struct {
	Networks             []Network  `json:"networks" yaml:"networks"`
	NetworkingParameters Parameters `json:"networking_parameters" yaml:"networking_parameters"`
}

// RangeError carries the errors of one IP or id range. Empty fields are clean.
type RangeError struct {
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// Empty reports whether the range is clean.
func (e RangeError) Empty() bool {
	return e.Start == "" && e.End == ""
}

// RangeErrors is indexed like the ranges it was produced from.
type RangeErrors []RangeError

// Empty reports whether every range is clean.
func (r RangeErrors) Empty() bool {
	for _, e := range r {
		if !e.Empty() {
			return false
		}
	}
	return true
}

// NetworkErrors are the field errors of one network.
type NetworkErrors struct {
	CIDR      string      `json:"cidr,omitempty" yaml:"cidr,omitempty"`
	Gateway   string      `json:"gateway,omitempty" yaml:"gateway,omitempty"`
	IPRanges  RangeErrors `json:"ip_ranges,omitempty" yaml:"ip_ranges,omitempty"`
	VLANStart string      `json:"vlan_start,omitempty" yaml:"vlan_start,omitempty"`
}

// Empty reports whether the network is clean.
func (e *NetworkErrors) Empty() bool {
	return e.CIDR == "" && e.Gateway == "" && e.IPRanges.Empty() && e.VLANStart == ""
}

// ParameterErrors are the field errors of the networking parameters.
type ParameterErrors struct {
	VLANRange        *RangeError `json:"vlan_range,omitempty" yaml:"vlan_range,omitempty"`
	GREIDRange       *RangeError `json:"gre_id_range,omitempty" yaml:"gre_id_range,omitempty"`
	FloatingRanges   RangeErrors `json:"floating_ranges,omitempty" yaml:"floating_ranges,omitempty"`
	DNSNameservers   []string    `json:"dns_nameservers,omitempty" yaml:"dns_nameservers,omitempty"`
	BaremetalGateway string      `json:"baremetal_gateway,omitempty" yaml:"baremetal_gateway,omitempty"`
	BaremetalRange   *RangeError `json:"baremetal_range,omitempty" yaml:"baremetal_range,omitempty"`
	InternalCIDR     string      `json:"internal_cidr,omitempty" yaml:"internal_cidr,omitempty"`
	InternalGateway  string      `json:"internal_gateway,omitempty" yaml:"internal_gateway,omitempty"`
	InternalName     string      `json:"internal_name,omitempty" yaml:"internal_name,omitempty"`
	FloatingName     string      `json:"floating_name,omitempty" yaml:"floating_name,omitempty"`
}

// Empty reports whether the parameters are clean.
func (e *ParameterErrors) Empty() bool {
	nameservers := true
	for _, s := range e.DNSNameservers {
		if s != "" {
			nameservers = false
		}
	}
	return e.VLANRange == nil && e.GREIDRange == nil && e.FloatingRanges.Empty() && nameservers &&
		e.BaremetalGateway == "" && e.BaremetalRange == nil &&
		e.InternalCIDR == "" && e.InternalGateway == "" && e.InternalName == "" && e.FloatingName == ""
}

// Errors is the error tree of a validation pass, keyed by group id then network id.
type Errors struct {
	Networks             map[int]map[int]*NetworkErrors `json:"networks,omitempty" yaml:"networks,omitempty"`
	NetworkingParameters *ParameterErrors               `json:"networking_parameters,omitempty" yaml:"networking_parameters,omitempty"`
}

// Count returns the number of networks and parameter sets with errors.
func (e *Errors) Count() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, nets := range e.Networks {
		n += len(nets)
	}
	if e.NetworkingParameters != nil {
		n++
	}
	return n
}

/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package network validates cluster network configuration: per-network CIDR,
// IP ranges, gateway and VLAN tag, the Neutron L2 segmentation id range,
// floating IP ranges, baremetal and internal network parameters, and DNS
// nameservers.
//
// Validation never stops at the first problem. Validate returns an Errors tree
// that carries every failed field, or nil when the configuration is valid:
//
//	networks:
//	  <group id>:
//	    <network id>: {cidr, gateway, ip_ranges: [{start, end}, ...], vlan_start}
//	networking_parameters: {vlan_range, floating_ranges, dns_nameservers, ...}
//
// Range errors are reported as arrays indexed like the ranges they describe.
// Only IPv4 is supported.
package network

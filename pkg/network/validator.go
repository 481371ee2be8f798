/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package network

import (
	"fmt"
	"log/slog"
)

// ID range bounds per segmentation type.
const (
	MinSegmentationID = 2
	MaxVLANID         = 4094
	MaxTunnelID       = 65535
)

// Validate checks cfg and returns every violated field at once, or nil when the
// configuration is valid. groups name the node network groups referenced by
// networks; unknown group ids are reported by number.
func Validate(cfg *Configuration, groups []NodeNetworkGroup) *Errors {
	if cfg == nil {
		return nil
	}
	v := &validation{
		cfg:        cfg,
		groupNames: make(map[int]string, len(groups)),
		errs:       &Errors{},
		params:     &ParameterErrors{},
	}
	for _, g := range groups {
		v.groupNames[g.ID] = g.Name
	}

	for i := range cfg.Networks {
		v.network(&cfg.Networks[i])
	}
	v.idRange()
	v.floatingRanges()
	v.baremetal()
	v.internal()
	v.nameservers()

	if !v.params.Empty() {
		v.errs.NetworkingParameters = v.params
	}
	if len(v.errs.Networks) == 0 && v.errs.NetworkingParameters == nil {
		return nil
	}
	return v.errs
}

type validation struct {
	cfg        *Configuration
	groupNames map[int]string
	errs       *Errors
	params     *ParameterErrors
}

func (v *validation) groupName(id int) string {
	if name, ok := v.groupNames[id]; ok {
		return name
	}
	return fmt.Sprintf("%d", id)
}

func (v *validation) network(n *Network) {
	if !n.Meta.Configurable {
		return
	}
	slog.Debug("validating network", "network", n.Name, "group", n.GroupID)

	ne := &NetworkErrors{}
	ne.CIDR = ValidateCIDR(n.CIDR)
	if ne.CIDR == "" {
		if n.Meta.Notation == NotationIPRanges {
			ne.IPRanges = ValidateIPRanges(n.IPRanges, n.CIDR, nil, true)
		}
		if n.Meta.UseGateway {
			var ranges []IPRange
			if n.Meta.Notation == NotationIPRanges {
				ranges = n.IPRanges
			}
			ne.Gateway = ValidateGateway(n.EffectiveGateway(), n.CIDR, ranges)
		}
	}
	if n.VLANStart != nil {
		ne.VLANStart = ValidateVLAN(*n.VLANStart)
	}

	if ne.Empty() {
		return
	}
	if v.errs.Networks == nil {
		v.errs.Networks = make(map[int]map[int]*NetworkErrors)
	}
	if v.errs.Networks[n.GroupID] == nil {
		v.errs.Networks[n.GroupID] = make(map[int]*NetworkErrors)
	}
	v.errs.Networks[n.GroupID][n.ID] = ne
}

// idRange checks the Neutron L2 id range of the active segmentation type.
func (v *validation) idRange() {
	p := v.cfg.NetworkingParameters
	switch p.SegmentationType {
	case SegmentationVLAN:
		if p.VLANRange != nil {
			v.params.VLANRange = ValidateIDRange(*p.VLANRange, MaxVLANID)
			if v.params.VLANRange == nil {
				v.params.VLANRange = v.vlanIntersection(*p.VLANRange)
			}
		}
	case SegmentationGRE, SegmentationTun:
		if p.GREIDRange != nil {
			v.params.GREIDRange = ValidateIDRange(*p.GREIDRange, MaxTunnelID)
		}
	}
}

// ValidateIDRange checks a segmentation id range against [MinSegmentationID, upper]
// and requires at least one free id between start and end. It returns nil when
// the range is valid.
func ValidateIDRange(r IDRange, upper int) *RangeError {
	e := &RangeError{}
	start, end := r[0], r[1]
	if start < MinSegmentationID || start > upper {
		e.Start = fmt.Sprintf("Invalid ID: must be between %d and %d", MinSegmentationID, upper)
	}
	if end < MinSegmentationID || end > upper {
		e.End = fmt.Sprintf("Invalid ID: must be between %d and %d", MinSegmentationID, upper)
	}
	if e.Empty() {
		switch {
		case start >= end:
			e.Start = MsgIDRangeOrder
			e.End = e.Start
		case end-start < 2:
			e.Start = MsgIDRangeTooNarrow
			e.End = e.Start
		}
	}
	if e.Empty() {
		return nil
	}
	return e
}

func (v *validation) vlanIntersection(r IDRange) *RangeError {
	for _, n := range v.cfg.Networks {
		if n.VLANStart == nil {
			continue
		}
		if tag := *n.VLANStart; tag >= r[0] && tag <= r[1] {
			msg := fmt.Sprintf("VLAN ID range intersects with VLAN ID of the %q network", n.Name)
			return &RangeError{Start: msg, End: msg}
		}
	}
	return nil
}

// floatingRanges validates floating ranges on their own, then against the
// assignable ranges of the first configurable network whose CIDR contains them.
func (v *validation) floatingRanges() {
	floating := v.cfg.NetworkingParameters.FloatingRanges
	if len(floating) == 0 {
		return
	}
	errs := ValidateIPRanges(floating, "", nil, false)
	if errs != nil {
		v.params.FloatingRanges = errs
		return
	}

	errs = make(RangeErrors, len(floating))
	for i, fr := range floating {
		owner := v.owningNetwork(fr)
		if owner == nil {
			errs[i] = RangeError{Start: MsgFloatingNotInCIDR, End: MsgFloatingNotInCIDR}
			continue
		}
		for _, r := range owner.AssignableRanges() {
			if RangesIntersect(fr, r) {
				msg := fmt.Sprintf("Floating IP range intersects with IP range of the %q network of the %q node network group",
					owner.Name, v.groupName(owner.GroupID))
				errs[i] = RangeError{Start: msg, End: msg}
				break
			}
		}
	}
	if !errs.Empty() {
		v.params.FloatingRanges = errs
	}
}

func (v *validation) owningNetwork(r IPRange) *Network {
	for i := range v.cfg.Networks {
		n := &v.cfg.Networks[i]
		if n.Meta.Configurable && ValidateCIDR(n.CIDR) == "" && RangeInCIDR(r, n.CIDR) {
			return n
		}
	}
	return nil
}

// baremetal checks the baremetal gateway and range against the baremetal network.
func (v *validation) baremetal() {
	p := v.cfg.NetworkingParameters
	if p.BaremetalGateway == "" && p.BaremetalRange == nil {
		return
	}
	var bm *Network
	for i := range v.cfg.Networks {
		if v.cfg.Networks[i].Name == BaremetalNetwork {
			bm = &v.cfg.Networks[i]
			break
		}
	}
	if bm == nil || ValidateCIDR(bm.CIDR) != "" {
		return
	}

	if p.BaremetalGateway != "" {
		v.params.BaremetalGateway = ValidateGateway(p.BaremetalGateway, bm.CIDR, nil)
	}
	if p.BaremetalRange != nil {
		if errs := ValidateIPRanges([]IPRange{*p.BaremetalRange}, bm.CIDR, bm.AssignableRanges(), true); errs != nil {
			v.params.BaremetalRange = &errs[0]
		}
	}
}

// internal checks the Neutron internal network parameters when they are set.
func (v *validation) internal() {
	p := v.cfg.NetworkingParameters
	if p.InternalCIDR != "" {
		v.params.InternalCIDR = ValidateCIDR(p.InternalCIDR)
		if v.params.InternalCIDR == "" && p.InternalGateway != "" {
			v.params.InternalGateway = ValidateGateway(p.InternalGateway, p.InternalCIDR, nil)
		}
	}
	if p.InternalName != "" {
		v.params.InternalName = ValidateName(p.InternalName)
	}
	if p.FloatingName != "" {
		v.params.FloatingName = ValidateName(p.FloatingName)
	}
}

func (v *validation) nameservers() {
	ns := v.cfg.NetworkingParameters.DNSNameservers
	if len(ns) == 0 {
		return
	}
	errs := make([]string, len(ns))
	failed := false
	for i, s := range ns {
		if ValidateIP(s) != "" {
			errs[i] = MsgInvalidNameserver
			failed = true
		}
	}
	if failed {
		v.params.DNSNameservers = errs
	}
}

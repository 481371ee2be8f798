/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package role holds the node role catalog: ordering, symmetric conflicts, and
// limit/restriction checks per role.
//
// Conflicts are declared one-sided in catalog data and derived into symmetric sets
// by Catalog.Rebuild in two passes over the name index:
//
//	roles:
//	- name: controller
//	  conflicts: [compute]   # compute also conflicts with controller
//	- name: virt
//	  conflicts: "*"         # conflicts with every other role, and they with it
package role

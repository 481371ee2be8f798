/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package settings validates cluster settings against a catalog of setting groups.
//
// Each setting has a widget type and optional constraints: a regex with its error
// message for text values, min/max for numbers, and an option list for radio and
// select settings. Settings hidden or disabled by restrictions are not validated,
// nor are the settings of a toggleable group that is switched off.
//
// The effective settings are exposed to expressions under the "settings" binding:
//
//	settings.storage.ceph.value
//	settings.storage.metadata.enabled
package settings

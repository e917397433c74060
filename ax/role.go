// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ax

import (
	"strings"

	"github.com/cockroachdb/redact"
)

// Role is the accessibility role of a node.
type Role uint8

// Role constants.
const (
	RoleUnknown Role = iota
	RoleRootWebArea
	RoleDesktop
	RoleWindow
	RoleGroup
	RoleGenericContainer
	RoleStaticText
	RoleButton
	RoleCheckBox
	RoleLink
	RoleHeading
	RoleImage
	RoleList
	RoleListItem
	RoleTextField
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleUnknown:
		return "unknown"
	case RoleRootWebArea:
		return "rootWebArea"
	case RoleDesktop:
		return "desktop"
	case RoleWindow:
		return "window"
	case RoleGroup:
		return "group"
	case RoleGenericContainer:
		return "genericContainer"
	case RoleStaticText:
		return "staticText"
	case RoleButton:
		return "button"
	case RoleCheckBox:
		return "checkBox"
	case RoleLink:
		return "link"
	case RoleHeading:
		return "heading"
	case RoleImage:
		return "image"
	case RoleList:
		return "list"
	case RoleListItem:
		return "listItem"
	case RoleTextField:
		return "textField"
	default:
		return "invalid"
	}
}

// SafeValue implements redact.SafeValue.
func (Role) SafeValue() {}

// ParseRole returns the role with the given name.
func ParseRole(name string) (Role, bool) {
	for r := RoleUnknown; r <= RoleTextField; r++ {
		if r.String() == name {
			return r, true
		}
	}
	return RoleUnknown, false
}

// IsDocumentRoot reports whether a node with this role may be the root of
// a tree.
func (r Role) IsDocumentRoot() bool {
	return r == RoleRootWebArea || r == RoleDesktop
}

// State is a set of boolean node states.
type State uint32

// State flags.
const (
	StateFocusable State = 1 << iota
	StateFocused
	StateInvisible
	StateSelected
	StateExpanded
	StateCollapsed
	StateDisabled
	StateReadOnly
)

var stateNames = []string{
	"FOCUSABLE",
	"FOCUSED",
	"INVISIBLE",
	"SELECTED",
	"EXPANDED",
	"COLLAPSED",
	"DISABLED",
	"READONLY",
}

// Has reports whether all states in flags are set.
func (s State) Has(flags State) bool {
	return s&flags == flags
}

// String returns the set states separated by spaces.
func (s State) String() string {
	var names []string
	for i, name := range stateNames {
		if s&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

// SafeValue implements redact.SafeValue.
func (State) SafeValue() {}

// ParseState returns the state flag with the given name.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

var _ redact.SafeValue = Role(0)
var _ redact.SafeValue = State(0)

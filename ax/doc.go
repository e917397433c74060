// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ax keeps a client copy of an accessibility tree up to date with
// incremental updates.
//
// A TreeSerializer reads a source tree through the TreeSource interface and
// remembers which nodes the client holds. After nodes of the source change,
// SerializeChanges is called for each of them and produces a TreeUpdate with
// just the nodes the client is missing or must refresh:
//
//	s := ax.NewTreeSerializer[*MyNode](src)
//	var u ax.TreeUpdate
//	if err := s.SerializeChanges(changed, &u); err != nil {
//		// The source was inconsistent. Drop u; the next update resends
//		// everything.
//	}
//	send(u)
//
// When a node known to the client moved to another parent, the serializer
// clears the smallest client subtree covering both parents and sends it
// again, so that the client never sees one node under two parents. The root
// of the client tree is always sent with a document root role.
//
// Tree is a client implementation that applies updates and rejects those
// that would leave it inconsistent.
package ax

// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"sort"

	"github.com/frontmcp/devdash/lib/devbus"
)

// NodeKind discriminates ownership-graph rows.
type NodeKind int

const (
	NodeServer NodeKind = iota
	NodeScope
	NodeApp
	NodePlugin
	NodeAdapter
	NodeTool
	NodeResource
	NodePrompt
	NodeAgent
	// NodeDirectHeader groups a scope's ownerless entries. It is not
	// expandable and never a collapse target.
	NodeDirectHeader
)

// GraphNode is one row of the flattened ownership tree. The tree is
// never stored: BuildGraph recomputes the whole list from the flat
// collections on every call, so it cannot drift from its source. An
// integer index into the list stays meaningful across repaints because
// ordering is deterministic.
type GraphNode struct {
	Key        string
	Label      string
	Kind       NodeKind
	Depth      int
	Expandable bool
	Expanded   bool
	ScopeID    string
	Entry      *RegistryEntry
}

// Expand-set key constructors. Only these four key shapes exist; the
// expanded-set is the single piece of persisted graph state.
func ScopeKey(id string) string     { return "scope:" + id }
func PluginKey(name string) string  { return "plugin:" + name }
func AdapterKey(name string) string { return "adapter:" + name }
func AppKey(id string) string       { return id }

// BuildGraph computes the ordered node list for the ownership graph:
// Server → scopes → inferred apps → adapters/plugins → entries, plus a
// "Direct" group per scope for ownerless entries. A node's subtree
// materializes only when its key is in the expanded set. Children are
// sorted by name.
//
// Apps are inferred, not declared: any id appearing as an owner of
// kind "app" or "scope" on any entry becomes an app node. An app's
// scope resolves through the owner→scope table built from the nested
// collections, falling back to app id equals scope id.
func BuildGraph(store *Store, expanded map[string]struct{}) []GraphNode {
	isExpanded := func(key string) bool {
		_, ok := expanded[key]
		return ok
	}

	serverLabel := store.Server.Name
	if serverLabel == "" {
		serverLabel = "server"
	}
	nodes := []GraphNode{{
		Key:   "server",
		Label: serverLabel,
		Kind:  NodeServer,
	}}

	appsByScope, appScopes := inferApps(store)

	scopes := make([]*Scope, len(store.Scopes))
	copy(scopes, store.Scopes)
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].ID < scopes[j].ID })

	for _, scope := range scopes {
		scopeKey := ScopeKey(scope.ID)
		scopeExpanded := isExpanded(scopeKey)
		nodes = append(nodes, GraphNode{
			Key:        scopeKey,
			Label:      scope.ID,
			Kind:       NodeScope,
			Depth:      1,
			Expandable: true,
			Expanded:   scopeExpanded,
			ScopeID:    scope.ID,
		})
		if !scopeExpanded {
			continue
		}

		apps := appsByScope[scope.ID]
		sort.Strings(apps)
		for _, appID := range apps {
			appExpanded := isExpanded(AppKey(appID))
			nodes = append(nodes, GraphNode{
				Key:        AppKey(appID),
				Label:      appID,
				Kind:       NodeApp,
				Depth:      2,
				Expandable: true,
				Expanded:   appExpanded,
				ScopeID:    scope.ID,
			})
			if !appExpanded {
				continue
			}
			nodes = appendOwnedContainers(nodes, store, scope, appID, isExpanded)
			nodes = appendOwnedEntries(nodes, scope, "app", appID, 3)
			nodes = appendOwnedEntries(nodes, scope, "scope", appID, 3)
		}

		direct := collectDirect(scope, appScopes)
		if len(direct) > 0 {
			nodes = append(nodes, GraphNode{
				Key:     "direct:" + scope.ID,
				Label:   "Direct",
				Kind:    NodeDirectHeader,
				Depth:   2,
				ScopeID: scope.ID,
			})
			nodes = append(nodes, direct...)
		}
	}

	return nodes
}

// inferApps scans all collections for app-kind owners, returning app
// ids grouped by scope and the app→scope table.
func inferApps(store *Store) (map[string][]string, map[string]string) {
	appScopes := make(map[string]string)
	note := func(owner *devbus.Owner, scopeID string) {
		if owner == nil {
			return
		}
		if owner.Kind != "app" && owner.Kind != "scope" {
			return
		}
		if _, ok := appScopes[owner.ID]; !ok {
			appScopes[owner.ID] = scopeID
		}
	}
	for _, scope := range store.Scopes {
		for _, entries := range [][]RegistryEntry{scope.Tools, scope.Resources, scope.Prompts, scope.Agents} {
			for _, entry := range entries {
				note(entry.Owner, scope.ID)
			}
		}
		for _, entries := range [][]RegistryEntry{scope.Plugins, scope.Adapters} {
			for _, entry := range entries {
				note(entry.Owner, scope.ID)
			}
		}
	}

	byScope := make(map[string][]string)
	for appID, scopeID := range appScopes {
		if scopeID == "" {
			scopeID = appID
		}
		byScope[scopeID] = append(byScope[scopeID], appID)
	}
	return byScope, appScopes
}

// appendOwnedContainers emits the adapter and plugin nodes owned by an
// app, with each container's entries beneath it when expanded.
func appendOwnedContainers(nodes []GraphNode, store *Store, scope *Scope, appID string, isExpanded func(string) bool) []GraphNode {
	adapters := ownedBy(scope.Adapters, "app", appID)
	sortEntries(adapters)
	for i := range adapters {
		adapter := &adapters[i]
		key := AdapterKey(adapter.Name)
		open := isExpanded(key)
		nodes = append(nodes, GraphNode{
			Key:        key,
			Label:      adapter.Name,
			Kind:       NodeAdapter,
			Depth:      3,
			Expandable: true,
			Expanded:   open,
			ScopeID:    scope.ID,
			Entry:      adapter,
		})
		if open {
			nodes = appendOwnedEntries(nodes, scope, "adapter", adapter.Name, 4)
		}
	}

	plugins := ownedBy(scope.Plugins, "app", appID)
	sortEntries(plugins)
	for i := range plugins {
		plugin := &plugins[i]
		key := PluginKey(plugin.Name)
		open := isExpanded(key)
		nodes = append(nodes, GraphNode{
			Key:        key,
			Label:      plugin.Name,
			Kind:       NodePlugin,
			Depth:      3,
			Expandable: true,
			Expanded:   open,
			ScopeID:    scope.ID,
			Entry:      plugin,
		})
		if open {
			nodes = appendOwnedEntries(nodes, scope, "plugin", plugin.Name, 4)
		}
	}
	return nodes
}

// appendOwnedEntries emits the tool/resource/prompt/agent rows owned
// by (ownerKind, ownerID), sorted by name within each kind.
func appendOwnedEntries(nodes []GraphNode, scope *Scope, ownerKind, ownerID string, depth int) []GraphNode {
	emit := func(entries []RegistryEntry, kind NodeKind, prefix string) {
		owned := ownedBy(entries, ownerKind, ownerID)
		sortEntries(owned)
		for i := range owned {
			entry := &owned[i]
			nodes = append(nodes, GraphNode{
				Key:     prefix + ":" + entry.Name,
				Label:   entry.Name,
				Kind:    kind,
				Depth:   depth,
				ScopeID: scope.ID,
				Entry:   entry,
			})
		}
	}
	emit(scope.Tools, NodeTool, "tool")
	emit(scope.Resources, NodeResource, "resource")
	emit(scope.Prompts, NodePrompt, "prompt")
	emit(scope.Agents, NodeAgent, "agent")
	return nodes
}

// collectDirect gathers a scope's ownerless entries under the Direct
// header.
func collectDirect(scope *Scope, appScopes map[string]string) []GraphNode {
	var nodes []GraphNode
	emit := func(entries []RegistryEntry, kind NodeKind, prefix string) {
		var direct []RegistryEntry
		for _, entry := range entries {
			if entry.Owner == nil || entry.Owner.ID == "" {
				direct = append(direct, entry)
				continue
			}
			// Owners that never resolved to an app node still count
			// as direct so the entry stays reachable.
			if _, known := appScopes[entry.Owner.ID]; !known &&
				entry.Owner.Kind != "plugin" && entry.Owner.Kind != "adapter" {
				direct = append(direct, entry)
			}
		}
		sortEntries(direct)
		for i := range direct {
			entry := &direct[i]
			nodes = append(nodes, GraphNode{
				Key:     prefix + ":" + entry.Name,
				Label:   entry.Name,
				Kind:    kind,
				Depth:   3,
				ScopeID: scope.ID,
				Entry:   entry,
			})
		}
	}
	emit(scope.Tools, NodeTool, "tool")
	emit(scope.Resources, NodeResource, "resource")
	emit(scope.Prompts, NodePrompt, "prompt")
	emit(scope.Agents, NodeAgent, "agent")
	return nodes
}

func ownedBy(entries []RegistryEntry, kind, id string) []RegistryEntry {
	var owned []RegistryEntry
	for _, entry := range entries {
		if entry.Owner != nil && entry.Owner.Kind == kind && entry.Owner.ID == id {
			owned = append(owned, entry)
		}
	}
	return owned
}

func sortEntries(entries []RegistryEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

// CollapseTarget finds the index of the nearest ancestor of the node
// at index: the closest earlier row with smaller depth, skipping
// Direct headers. Returns index unchanged when there is no ancestor.
func CollapseTarget(nodes []GraphNode, index int) int {
	if index < 0 || index >= len(nodes) {
		return index
	}
	depth := nodes[index].Depth
	for i := index - 1; i >= 0; i-- {
		if nodes[i].Depth >= depth {
			continue
		}
		if nodes[i].Kind == NodeDirectHeader {
			// A header is not selectable; keep climbing toward its
			// own ancestor.
			depth = nodes[i].Depth
			continue
		}
		return i
	}
	return index
}

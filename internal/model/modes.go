// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
)

// =============================================================================
// MODE INFO TYPE
// =============================================================================

// ModeInfo describes a routing mode the server may report on a
// structured response. Used for mode badges in the UI and the
// status/config command output.
type ModeInfo struct {
	// ID is the mode identifier as it appears on the wire
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Badge is a short label rendered next to assistant turns
	Badge string `json:"badge"`

	// UsesRetrieval is true when the mode consults external context
	UsesRetrieval bool `json:"uses_retrieval"`

	// Description is a brief explanation of when the server picks
	// this mode
	Description string `json:"description"`
}

// =============================================================================
// MODE REGISTRY
// =============================================================================

// Modes is the registry of known routing modes with their metadata.
var Modes = map[string]ModeInfo{
	"adapter": {
		ID:            "adapter",
		Name:          "Domain Adapter",
		Badge:         "LoRA",
		UsesRetrieval: false,
		Description:   "A fine-tuned LoRA adapter matched the query domain",
	},
	"rag-external": {
		ID:            "rag-external",
		Name:          "External Retrieval",
		Badge:         "RAG",
		UsesRetrieval: true,
		Description:   "Answer grounded in retrieved external context",
	},
	"rag-fallback": {
		ID:            "rag-fallback",
		Name:          "Retrieval Fallback",
		Badge:         "RAG*",
		UsesRetrieval: true,
		Description:   "Retrieval used after no adapter matched",
	},
	"internal-reasoning": {
		ID:            "internal-reasoning",
		Name:          "Internal Reasoning",
		Badge:         "CoT",
		UsesRetrieval: false,
		Description:   "Multi-step reasoning on the base model",
	},
	"base-model": {
		ID:            "base-model",
		Name:          "Base Model",
		Badge:         "Base",
		UsesRetrieval: false,
		Description:   "Direct base model generation, no specialization",
	},
}

// =============================================================================
// MODE INFO METHODS
// =============================================================================

// DisplayBadge returns the badge label, falling back to the raw ID for
// modes the client does not know about.
func (m ModeInfo) DisplayBadge() string {
	if m.Badge != "" {
		return m.Badge
	}
	return m.ID
}

// =============================================================================
// MODE LOOKUP FUNCTIONS
// =============================================================================

// GetModeInfo looks up a mode by its wire identifier. Unknown modes
// yield a descriptor that echoes the ID so the UI still has something
// to show.
func GetModeInfo(id string) (ModeInfo, bool) {
	if info, ok := Modes[id]; ok {
		return info, true
	}

	// Tolerate case differences from older server builds
	lower := strings.ToLower(id)
	if info, ok := Modes[lower]; ok {
		return info, true
	}

	return ModeInfo{ID: id, Name: id, Badge: id}, false
}

// RetrievalModes returns the modes that consult external context.
func RetrievalModes() []ModeInfo {
	result := []ModeInfo{}
	for _, info := range Modes {
		if info.UsesRetrieval {
			result = append(result, info)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ModeIDs returns a sorted slice of all known mode identifiers.
func ModeIDs() []string {
	ids := make([]string, 0, len(Modes))
	for id := range Modes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

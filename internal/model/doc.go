// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
//
// This package defines the core domain types used throughout the
// application for representing a chat session against the adaptive
// inference server.
//
// # Key Types
//
//   - Conversation: ordered turn history for one client session
//   - Turn: single entry with role, content, optional routing metadata,
//     and a one-shot feedback rating
//   - StreamHandle: stable identity for the assistant turn owned by an
//     open token stream
//   - ModeInfo: descriptor for a server routing mode (adapter, RAG,
//     base model)
//
// # Usage
//
// Create a conversation and drive a streamed exchange:
//
//	conv := model.NewConversation("You are a helpful assistant.")
//	conv.AppendUserTurn("Explain LoRA adapters")
//	handle := conv.BeginAssistantStream()
//	conv.AppendStreamChunk(handle, "Low-rank ")
//	conv.AppendStreamChunk(handle, "adaptation...")
//	conv.FinalizeStream(handle, nil)
//
// Feedback is cast by turn index and sticks on first set:
//
//	conv.CastVote(2, model.FeedbackUp)
package model

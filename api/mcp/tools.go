package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/record"
)

var (
	memoryGetToolName    = "memory_get"
	memoryGetDescription = "Fetch the creatormem record of a user: their atomic facts, derived profile, interaction log and change history, together with recommendations derived from the profile. The record is created empty on first use."

	memoryAddFactToolName    = "memory_add_fact"
	memoryAddFactDescription = "Record a fact about a user in a category (for example industry or rate). A newer fact in the same category supersedes the previous one; the old fact is kept and the conflict is logged in the history."

	memoryEvolveProfileToolName    = "memory_evolve_profile"
	memoryEvolveProfileDescription = "Merge a partial update into a user's profile summary. Accepted fields: industry, contentType, followerRange, typicalDealSize (strings or null), topConcerns (list of strings) and preferredTerms (object). Every changed field is logged in the history."

	memoryRecordInteractionToolName    = "memory_record_interaction"
	memoryRecordInteractionDescription = "Append a raw interaction event (any type and payload) to a user's interaction log."

	memoryListUsersToolName    = "memory_list_users"
	memoryListUsersDescription = "List the IDs of every user that has a creatormem record, in ascending order."
)

// MemoryGetInput represents the input arguments for the memory_get tool.
type MemoryGetInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"the user whose memory to fetch, defaults to anonymous"`
}

// MemoryAddFactInput represents the input arguments for the memory_add_fact tool.
type MemoryAddFactInput struct {
	UserID   string  `json:"user_id,omitempty" jsonschema:"the user the fact is about, defaults to anonymous"`
	Category string  `json:"category" jsonschema:"the fact category, e.g. industry"`
	Fact     any     `json:"fact" jsonschema:"the fact value, any JSON value"`
	Source   *string `json:"source,omitempty" jsonschema:"optional provenance of the fact"`
}

// MemoryEvolveProfileInput represents the input arguments for the memory_evolve_profile tool.
type MemoryEvolveProfileInput struct {
	UserID  string         `json:"user_id,omitempty" jsonschema:"the user whose profile to update, defaults to anonymous"`
	Updates map[string]any `json:"updates" jsonschema:"profile fields to merge"`
}

// MemoryRecordInteractionInput represents the input arguments for the memory_record_interaction tool.
type MemoryRecordInteractionInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"the user who interacted, defaults to anonymous"`
	Type   string `json:"type" jsonschema:"the interaction type, e.g. contract_upload"`
	Data   any    `json:"data,omitempty" jsonschema:"the interaction payload"`
}

// MemoryListUsersInput represents the input arguments for the memory_list_users tool.
type MemoryListUsersInput struct{}

// MemoryListUsersOutput is the JSON text returned by memory_list_users.
type MemoryListUsersOutput struct {
	Users []string `json:"users"`
}

// MemoryGetOutput is the JSON text returned by memory_get.
type MemoryGetOutput struct {
	User            *record.UserRecord      `json:"user"`
	Recommendations []record.Recommendation `json:"recommendations"`
}

// handleGet processes a memory_get request via MCP.
func (s *Server) handleGet(ctx context.Context, _ *mcp.CallToolRequest, input MemoryGetInput) (*mcp.CallToolResult, any, error) {
	userID := memory.NormalizeUserID(input.UserID)

	user, err := s.config.Manager.Get(ctx, userID)
	if err != nil {
		return s.failed(memoryGetToolName, err), nil, nil
	}

	return jsonResult(MemoryGetOutput{
		User:            user,
		Recommendations: memory.Recommend(user.Profile),
	}), nil, nil
}

// handleAddFact processes a memory_add_fact request via MCP.
func (s *Server) handleAddFact(ctx context.Context, _ *mcp.CallToolRequest, input MemoryAddFactInput) (*mcp.CallToolResult, any, error) {
	userID := memory.NormalizeUserID(input.UserID)
	if input.Category == "" {
		return errorResult("category is required"), nil, nil
	}

	user, err := s.config.Manager.AddFact(ctx, userID, input.Category, input.Fact, input.Source)
	if err != nil {
		return s.failed(memoryAddFactToolName, err), nil, nil
	}
	return jsonResult(user), nil, nil
}

// handleEvolveProfile processes a memory_evolve_profile request via MCP.
func (s *Server) handleEvolveProfile(ctx context.Context, _ *mcp.CallToolRequest, input MemoryEvolveProfileInput) (*mcp.CallToolResult, any, error) {
	userID := memory.NormalizeUserID(input.UserID)

	user, err := s.config.Manager.EvolveProfile(ctx, userID, record.ProfileUpdate(input.Updates))
	if err != nil {
		return s.failed(memoryEvolveProfileToolName, err), nil, nil
	}
	return jsonResult(user), nil, nil
}

// handleRecordInteraction processes a memory_record_interaction request via MCP.
func (s *Server) handleRecordInteraction(ctx context.Context, _ *mcp.CallToolRequest, input MemoryRecordInteractionInput) (*mcp.CallToolResult, any, error) {
	userID := memory.NormalizeUserID(input.UserID)

	user, err := s.config.Manager.RecordInteraction(ctx, userID, input.Type, input.Data)
	if err != nil {
		return s.failed(memoryRecordInteractionToolName, err), nil, nil
	}
	return jsonResult(user), nil, nil
}

// handleListUsers processes a memory_list_users request via MCP.
func (s *Server) handleListUsers(ctx context.Context, _ *mcp.CallToolRequest, _ MemoryListUsersInput) (*mcp.CallToolResult, any, error) {
	users, err := s.config.Manager.Users(ctx)
	if err != nil {
		return s.failed(memoryListUsersToolName, err), nil, nil
	}
	return jsonResult(MemoryListUsersOutput{Users: users}), nil, nil
}

func (s *Server) failed(tool string, err error) *mcp.CallToolResult {
	s.config.Logger.Error("mcp tool failed", "tool", tool, "error", err)
	return errorResult(fmt.Sprintf("%s failed: %v", tool, err))
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

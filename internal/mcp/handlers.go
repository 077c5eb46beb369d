// ABOUTME: MCP tool handler implementations for the policy retrieval server
// ABOUTME: Thin adapters from tool arguments to the ingest and retrieval pipelines
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/guidewell/policyrag/internal/core"
	"github.com/guidewell/policyrag/internal/llm"
	"github.com/guidewell/policyrag/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	ingestor  *core.Ingestor
	retriever *core.Retriever
	llmClient *llm.Client
}

// IngestDocument handles the ingest_document tool
func (h *Handlers) IngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rootID, err := request.RequireString("root_id")
	if err != nil {
		return mcp.NewToolResultError("root_id argument is required and must be a string"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}
	pathStr, err := request.RequireString("component_path")
	if err != nil {
		return mcp.NewToolResultError("component_path argument is required and must be a string"), nil
	}

	path, err := models.ParsePath(pathStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid component_path: %v", err)), nil
	}

	doc := models.Document{
		RootID:   rootID,
		Title:    title,
		Content:  content,
		Path:     path,
		Products: argStringArray(request, "products"),
	}

	stats, err := h.ingestor.IngestAll(ctx, []models.Document{doc})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	log.Printf("[MCP] ingested %s: %d chunks", rootID, stats.Chunks)

	responseJSON, err := json.Marshal(map[string]interface{}{
		"root_id": rootID,
		"chunks":  stats.Chunks,
		"stats":   stats,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// SearchPolicies handles the search_policies tool
func (h *Handlers) SearchPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	result, err := h.retriever.Retrieve(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// AnswerPolicyQuestion handles the answer_policy_question tool
func (h *Handlers) AnswerPolicyQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	result, err := h.retriever.Retrieve(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("retrieval failed: %v", err)), nil
	}
	if len(result.Results) == 0 {
		return mcp.NewToolResultText(`{"answer":"No relevant policy content was found for this question.","citations":[]}`), nil
	}

	contexts := make([]string, 0, len(result.Results))
	citations := make([]models.Citation, 0, len(result.Results))
	for _, res := range result.Results {
		contexts = append(contexts, res.Content)
		citations = append(citations, res.Citation)
	}

	answer, err := h.llmClient.Answer(ctx, query, contexts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answer synthesis failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(map[string]interface{}{
		"answer":    answer,
		"citations": citations,
		"strategy":  result.Strategy,
		"degraded":  result.Degraded,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// argStringArray extracts an optional string array argument
func argStringArray(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

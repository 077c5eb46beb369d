// ABOUTME: MCP tool definitions and registration for the policy retrieval server
// ABOUTME: Defines JSON schemas for the ingest, search, and answer tools
package mcp

import (
	"github.com/guidewell/policyrag/internal/core"
	"github.com/guidewell/policyrag/internal/llm"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, ingestor *core.Ingestor, retriever *core.Retriever, llmClient *llm.Client) *Handlers {
	handlers := &Handlers{
		ingestor:  ingestor,
		retriever: retriever,
		llmClient: llmClient,
	}

	// 1. ingest_document - process one policy document into both collections
	server.AddTool(mcp.Tool{
		Name:        "ingest_document",
		Description: "Ingest a policy document: clean, classify, chunk, summarize, embed, and index it. Re-ingesting a root_id replaces the previous version.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"root_id": map[string]interface{}{
					"type":        "string",
					"description": "Stable document identifier (the component path root)",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Document page title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Document content, raw HTML or plain text",
				},
				"component_path": map[string]interface{}{
					"type":        "string",
					"description": "Underscore-joined hierarchy path, e.g. x37806_x111544_x111562",
				},
				"products": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Product codes this document applies to (e.g. VA, FHA)",
				},
			},
			Required: []string{"root_id", "title", "content", "component_path"},
		},
	}, handlers.IngestDocument)

	// 2. search_policies - classified two-tier retrieval
	server.AddTool(mcp.Tool{
		Name:        "search_policies",
		Description: "Search indexed policy documents. The query is classified (general, product-specific, comparison, procedure) and routed to summary or chunk search with metadata filters.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language policy question",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchPolicies)

	// 3. answer_policy_question - retrieval plus synthesized answer
	server.AddTool(mcp.Tool{
		Name:        "answer_policy_question",
		Description: "Answer a policy question from the indexed documents, with citations. Runs search_policies and synthesizes a grounded answer from the results.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language policy question",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.AnswerPolicyQuestion)

	return handlers
}

package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/modguard/promptgate/internal/analyzer"
	"github.com/modguard/promptgate/internal/cache"
	"github.com/modguard/promptgate/internal/models"
)

// CheckPromptInput is the MCP tool input schema (matches HTTP API field names).
type CheckPromptInput struct {
	Text string `json:"text" jsonschema:"prompt text to screen for policy violations"`
}

// NewCheckPromptHandler returns a tool handler that runs the moderation
// pipeline through the decision cache. Pass the returned function to
// mcp.AddTool.
func NewCheckPromptHandler(decisionCache *cache.Cache, pipeline *analyzer.Pipeline) func(context.Context, *mcp.CallToolRequest, CheckPromptInput) (*mcp.CallToolResult, models.AnalysisResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CheckPromptInput) (*mcp.CallToolResult, models.AnalysisResult, error) {
		result := decisionCache.GetOrCompute(ctx, input.Text, pipeline.Analyze)
		return nil, result, nil
	}
}

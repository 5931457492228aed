package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rubysgifts/giftd/internal/enrichment"
	"github.com/rubysgifts/giftd/internal/questionnaire"
	"github.com/rubysgifts/giftd/internal/shopping"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Advisor  GiftAdvisor
	Enricher *enrichment.Enricher
	Resolver enrichment.ImageResolver
	Links    *shopping.Builder
	Store    ResultStore
	Version  string
}

// NewMCPServer creates an MCP server exposing gift generation, image
// resolution, and shopping link tools to agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"giftd",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("giftd generates personalized gift ideas with product images and store links from questionnaire answers about the recipient."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("generate_gift_ideas",
			mcp.WithDescription("Generate three personalized gift ideas with images and store links from answers about the recipient."),
			mcp.WithString("call_them", mcp.Description("What the giver calls the recipient"), mcp.Required()),
			mcp.WithString("relationship", mcp.Description("Relationship between giver and recipient"), mcp.Required()),
			mcp.WithString("previous_gifts", mcp.Description("Gifts given in the past"), mcp.Required()),
			mcp.WithString("hate", mcp.Description("Things the recipient hates"), mcp.Required()),
			mcp.WithString("complaints", mcp.Description("Things the recipient complains about"), mcp.Required()),
			mcp.WithString("complain_about_them", mcp.Description("The recipient's quirks and habits"), mcp.Required()),
			mcp.WithString("budget", mcp.Description("Gift budget"), mcp.Required()),
			mcp.WithString("limitations", mcp.Description("Constraints on the gift"), mcp.Required()),
		),
		mcpGenerateGiftIdeas(deps),
	)

	s.AddTool(
		mcp.NewTool("find_product_images",
			mcp.WithDescription("Resolve representative product images for a search phrase."),
			mcp.WithString("query", mcp.Description("Product search phrase"), mcp.Required()),
			mcp.WithNumber("count", mcp.Description("Number of images (1-10, default 3)")),
		),
		mcpFindProductImages(deps),
	)

	s.AddTool(
		mcp.NewTool("shopping_links",
			mcp.WithDescription("Build store search links for a product query."),
			mcp.WithString("query", mcp.Description("Product search query"), mcp.Required()),
		),
		mcpShoppingLinks(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"giftd://results/recent",
			"Recent Results",
			mcp.WithResourceDescription("Last 10 stored generation results (IDs and timestamps)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpGenerateGiftIdeas(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		answers := questionnaire.Answers{}
		for _, field := range questionnaire.RequiredFields {
			value, err := req.RequireString(field)
			if err != nil {
				return mcpError(fmt.Sprintf("%s is required", field)), nil
			}
			answers[field] = value
		}
		answers = questionnaire.SanitizeAll(answers)
		if err := questionnaire.Validate(answers); err != nil {
			return mcpError(err.Error()), nil
		}

		ideas, err := deps.Advisor.GenerateIdeas(ctx, answers)
		if err != nil {
			return mcpError(fmt.Sprintf("gift generation failed: %v", err)), nil
		}
		enriched := deps.Enricher.Enrich(ctx, ideas)

		b, err := json.MarshalIndent(enriched, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode ideas: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpFindProductImages(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		count := req.GetInt("count", 3)

		records := deps.Resolver.Resolve(ctx, query, count)
		b, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode images: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpShoppingLinks(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		links := deps.Links.Build(query)
		b, err := json.MarshalIndent(links, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode links: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		results, err := deps.Store.RecentResults(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list recent results: %w", err)
		}

		type resultSummary struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			ExpiresAt string `json:"expires_at"`
		}
		summaries := make([]resultSummary, len(results))
		for i, r := range results {
			summaries[i] = resultSummary{
				ID:        r.ID,
				CreatedAt: r.CreatedAt.Format(time.RFC3339),
				ExpiresAt: r.ExpiresAt.Format(time.RFC3339),
			}
		}

		b, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode summaries: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

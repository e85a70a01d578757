// ABOUTME: MCP server subcommand
// ABOUTME: Starts the dealdesk MCP server on stdio for agent integration
package cli

import (
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Logger.Info("Starting dealdesk MCP server...")

			store, err := a.dealStore()
			if err != nil {
				return err
			}
			dis, err := a.dismissalStore()
			if err != nil {
				return err
			}

			dealHandlers := handlers.NewDealHandlers(store, dis, config.Logger, a.cfg.MaxSuggestions)
			server := NewMCPServer(dealHandlers, a.version)

			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

// NewMCPServer registers the deal tools, prompt, and resource template.
func NewMCPServer(dealHandlers *handlers.DealHandlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealdesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_next_action",
		Description: "Get the single recommended next action for a deal, with priority, category, and context",
	}, dealHandlers.GetNextAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_actions",
		Description: "Get ranked suggestions for a deal drawn from recent conversations, contact recency, and offer timing",
	}, dealHandlers.SuggestActions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dismiss_suggestion",
		Description: "Hide a suggestion so the next one surfaces in suggest_actions",
	}, dealHandlers.DismissSuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_conversation",
		Description: "Log a seller conversation and update last contact timestamps",
	}, dealHandlers.LogConversation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_deal_stage",
		Description: "Move a deal to the next stage of the pipeline",
	}, dealHandlers.AdvanceDealStage)

	server.AddPrompt(&mcp.Prompt{
		Name:        handlers.DealBriefingPrompt,
		Description: "Brief me on a deal: where it stands, the next action, and talking points",
		Arguments: []*mcp.PromptArgument{
			{Name: "deal_id", Description: "Deal ID", Required: true},
		},
	}, dealHandlers.GetPrompt)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "deal",
		Description: "Deal snapshot with its recommended next action",
		MIMEType:    "application/json",
		URITemplate: handlers.DealResourcePattern,
	}, dealHandlers.ReadResource)

	return server
}

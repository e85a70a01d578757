// ABOUTME: MCP resource handlers for exposing deal snapshots
// ABOUTME: Serves dealdesk://deals/{id} as JSON with the computed next action
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/dealdesk/actions"
	"github.com/harperreed/dealdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ResourceScheme      = "dealdesk://"
	DealResourcePattern = ResourceScheme + "deals/{id}"
)

// ReadResource handles resource read requests
func (h *DealHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, ResourceScheme), "/")
	switch {
	case len(parts) == 2 && parts[0] == "deals":
		return h.readDeal(ctx, uri, parts[1])
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
}

func (h *DealHandlers) readDeal(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	deal, err := h.loadDeal(ctx, idStr)
	if err != nil {
		return nil, err
	}

	dealData := struct {
		*models.Deal
		NextAction actions.NextAction `json:"recommended_action"`
	}{
		Deal:       deal,
		NextAction: actions.CalculateNextAction(deal, h.now()),
	}

	data, err := json.MarshalIndent(dealData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deal: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

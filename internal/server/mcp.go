package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pable/go-rushing-metrics/internal/export"
	"github.com/pable/go-rushing-metrics/internal/filter"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

type listSeasonsArgs struct{}

type listTeamsArgs struct {
	Exclude string `json:"exclude,omitempty" jsonschema:"Team to leave out of the list"`
}

type compareArgs struct {
	Season  int    `json:"season,omitempty" jsonschema:"Season year (0 = newest)"`
	TeamOne string `json:"team_one,omitempty" jsonschema:"First team (default from config)"`
	TeamTwo string `json:"team_two,omitempty" jsonschema:"Second team (default from config)"`
	Top     int    `json:"top,omitempty" jsonschema:"How many bin differences to return (0 = default)"`
}

// NewMCPServer registers the comparison tools on a new MCP server.
func NewMCPServer(sess Comparer, defaults Defaults) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "rushmetrics", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_seasons",
		Description: "Seasons available in the carry table, newest first",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ listSeasonsArgs) (*mcp.CallToolResult, any, error) {
		seasons, err := sess.Seasons(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(json.Marshal(map[string]any{"seasons": seasons}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_teams",
		Description: "Teams available in the carry table",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listTeamsArgs) (*mcp.CallToolResult, any, error) {
		teams, err := sess.Teams(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		if args.Exclude != "" {
			teams = filter.TeamOptions(teams, args.Exclude)
		}
		return toolJSON(json.Marshal(map[string]any{"teams": teams}))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_teams",
		Description: "Carry totals, top bin differences and cumulative difference for two teams in one season",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args compareArgs) (*mcp.CallToolResult, any, error) {
		sel := model.Selection{Season: args.Season, TeamOne: args.TeamOne, TeamTwo: args.TeamTwo}
		if sel.TeamOne == "" {
			sel.TeamOne = defaults.TeamOne
		}
		if sel.TeamTwo == "" {
			sel.TeamTwo = defaults.TeamTwo
		}
		top := args.Top
		if top <= 0 {
			top = defaults.Top
		}
		if sel.Season == 0 {
			seasons, err := sess.Seasons(ctx)
			if err != nil {
				return toolError(err), nil, nil
			}
			if len(seasons) == 0 {
				return toolError(fmt.Errorf("no seasons available")), nil, nil
			}
			sel.Season = seasons[0]
		}

		cmp, err := sess.Compare(ctx, sel, top)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(json.MarshalIndent(export.NewDocument(cmp), "", "  "))
	})

	return server
}

func newMCPHandler(sess Comparer, defaults Defaults) http.Handler {
	server := NewMCPServer(sess, defaults)
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}

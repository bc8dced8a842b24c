// Package mcptools exposes the trade recommender and captain suggester as
// Model Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pmurley/afl-trade-bot/internal/models"
	"github.com/pmurley/afl-trade-bot/internal/service"
)

const (
	serverName    = "afl-trade-mcp"
	serverVersion = "0.1.0"
)

type TradeArgs struct {
	CurrentTeam    []models.Player `json:"current_team,omitempty" jsonschema:"Roster players (id, position, price, projectedScore, average). Ignored when use_saved_team is set"`
	MaxRookiePrice int             `json:"max_rookie_price,omitempty" jsonschema:"Highest price for a downgrade target (default from server config)"`
	UseSavedTeam   bool            `json:"use_saved_team,omitempty" jsonschema:"Use the saved team instead of current_team"`
	UsePlayerPool  bool            `json:"use_player_pool,omitempty" jsonschema:"Search the loaded player database instead of the roster itself"`
}

type CaptainArgs struct {
	N int `json:"n,omitempty" jsonschema:"Number of ranked players to return (default 3)"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry lists the tools registered on a server
type Registry []toolInfo

// NewServer builds an MCP server with the trade tools registered
func NewServer(svc *service.Service) (*mcp.Server, Registry) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		nil,
	)

	registry := make(Registry, 0, 2)

	addTool(server, &registry, &mcp.Tool{
		Name:        "trade_recommendations",
		Description: "Ranked downgrade + upgrade trade pairs for an AFL fantasy roster",
		InputSchema: tradeArgsSchema(),
	}, func(ctx context.Context, req *mcp.CallToolRequest, args TradeArgs) (*mcp.CallToolResult, any, error) {
		if args.MaxRookiePrice < 0 {
			return toolError(fmt.Errorf("max_rookie_price must be positive")), nil, nil
		}
		result, err := svc.Recommend(ctx, service.RecommendRequest{
			CurrentTeam:    args.CurrentTeam,
			MaxRookiePrice: args.MaxRookiePrice,
			UseSavedTeam:   args.UseSavedTeam,
			UsePlayerPool:  args.UsePlayerPool,
			Source:         service.SourceMCP,
		})
		if err != nil {
			return toolError(err), nil, nil
		}
		if result.Status != service.StatusOK {
			return toolError(fmt.Errorf("%s", result.Message)), nil, nil
		}
		return toolJSON(json.MarshalIndent(result, "", "  "))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "captain_suggestions",
		Description: "Captain and vice-captain picks from the saved team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CaptainArgs) (*mcp.CallToolResult, any, error) {
		s, err := svc.Captain(ctx, args.N)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolJSON(json.MarshalIndent(s, "", "  "))
	})

	return server, registry
}

// tradeArgsSchema is the inferred TradeArgs schema with player ids widened
// to accept numbers, matching models.PlayerID's JSON decoding.
func tradeArgsSchema() *jsonschema.Schema {
	schema, err := jsonschema.For[TradeArgs](&jsonschema.ForOptions{
		TypeSchemas: map[reflect.Type]*jsonschema.Schema{
			reflect.TypeFor[models.PlayerID](): {Types: []string{"string", "integer"}},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("mcptools: TradeArgs schema: %v", err))
	}
	return schema
}

// Handler serves the MCP streamable HTTP transport
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func addTool[T any](server *mcp.Server, registry *Registry, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
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

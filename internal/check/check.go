// Package check exercises a remote MCP endpoint through a real streamable-HTTP
// client, so configuration problems surface before the bridge is wired into
// an editor.
package check

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Result summarizes a successful connectivity check.
type Result struct {
	ServerName      string
	ServerVersion   string
	ProtocolVersion string
	ToolCount       int
}

// Run initializes against the endpoint and lists its tools when the server
// advertises the tools capability.
func Run(ctx context.Context, endpoint string, timeout time.Duration) (Result, error) {
	t, err := transport.NewStreamableHTTP(endpoint, transport.WithHTTPTimeout(timeout))
	if err != nil {
		return Result{}, fmt.Errorf("create transport: %w", err)
	}
	c := client.NewClient(t)
	if err := c.Start(ctx); err != nil {
		return Result{}, fmt.Errorf("start transport: %w", err)
	}
	defer func() { _ = c.Close() }()

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "mcpipe", Version: "dev"}
	res, err := c.Initialize(ctx, initReq)
	if err != nil {
		return Result{}, fmt.Errorf("initialize: %w", err)
	}
	out := Result{
		ServerName:      res.ServerInfo.Name,
		ServerVersion:   res.ServerInfo.Version,
		ProtocolVersion: res.ProtocolVersion,
	}
	if res.Capabilities.Tools != nil {
		tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return Result{}, fmt.Errorf("list tools: %w", err)
		}
		out.ToolCount = len(tools.Tools)
	}
	return out, nil
}

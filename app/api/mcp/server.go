package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"campusbot/app/domain"
	"campusbot/app/service/chat"
	"campusbot/app/service/knowledge"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const (
	serverName    = "campusbot"
	serverVersion = "1.0.0"
)

// Server exposes the chat pipeline as MCP tools.
type Server struct {
	chatSvc      *chat.Service
	knowledgeSvc *knowledge.Service
	mcpServer    *server.MCPServer
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(
		do.MustInvoke[*chat.Service](di),
		do.MustInvoke[*knowledge.Service](di),
	), nil
}

func NewServer(chatSvc *chat.Service, knowledgeSvc *knowledge.Service) *Server {
	s := &Server{
		chatSvc:      chatSvc,
		knowledgeSvc: knowledgeSvc,
		mcpServer:    server.NewMCPServer(serverName, serverVersion),
	}
	s.registerTools()
	return s
}

// ServeStdio serves JSON-RPC on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask_campusbot",
		mcp.WithDescription("Ask the computer science department assistant a question."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The question to ask")),
		mcp.WithString("history", mcp.Description(`JSON array of prior messages, e.g. [{"role":"user","content":"hi"}] (optional)`)),
	)
	s.mcpServer.AddTool(askTool, s.handleAsk)

	s.mcpServer.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List the topics the offline assistant can answer, in matching order."),
	), s.handleListTopics)

	s.mcpServer.AddTool(mcp.NewTool("program_facts",
		mcp.WithDescription("Look up program knowledge base sections by name. Without names, lists the available sections."),
		mcp.WithString("sections", mcp.Description("Comma separated section names, e.g. \"Core Courses, Internship\" (optional)")),
	), s.handleProgramFacts)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	message, _ := args["message"].(string)
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	var history []domain.Message
	if histStr, ok := args["history"].(string); ok && strings.TrimSpace(histStr) != "" {
		if err := json.Unmarshal([]byte(histStr), &history); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid history: %v", err)), nil
		}
	}

	reply, err := s.chatSvc.GetReply(ctx, message, history)
	if err != nil {
		slog.Warn("MCP ask failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(reply.Text), nil
}

func (s *Server) handleListTopics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.chatSvc.Topics(), "\n")), nil
}

func (s *Server) handleProgramFacts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := request.GetArguments()["sections"].(string)

	if strings.TrimSpace(raw) == "" {
		names := make([]string, 0)
		for _, sec := range s.knowledgeSvc.Sections() {
			names = append(names, sec.Name)
		}
		return mcp.NewToolResultText(strings.Join(names, "\n")), nil
	}

	sections := s.knowledgeSvc.Search(strings.Split(raw, ","))
	if len(sections) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no sections named %q", raw)), nil
	}

	var builder strings.Builder
	for _, sec := range sections {
		builder.WriteString(fmt.Sprintf("## %s\n", sec.Name))
		for _, fact := range sec.Facts {
			builder.WriteString(fmt.Sprintf("- %s\n", fact))
		}
	}

	return mcp.NewToolResultText(builder.String()), nil
}

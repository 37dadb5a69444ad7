// Package toolserver exposes the edit-command surface over the Model
// Context Protocol so any tool-calling client can drive the shared
// document. It owns the process's single session and hands every command
// to the dispatcher — there is no package-global connection state.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spork-collab/spork/doc"
	"github.com/spork-collab/spork/editor"
	"github.com/spork-collab/spork/presence"
)

const (
	serverName    = "spork-mcp"
	serverVersion = "0.2.0"
	displayName   = "MCP Editor"
)

// Server routes MCP tool calls to the edit-command dispatcher. Commands
// are processed one at a time to completion; the session is the only
// shared state and it is owned here.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *editor.Dispatcher
	logger     *slog.Logger

	mu   sync.Mutex
	sess *doc.Session
}

// New creates a Server dispatching through the given connector. Edits made
// through the tool surface announce an agent cursor, since the caller is a
// tool-calling model.
func New(connector editor.Connector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp:        server.NewMCPServer(serverName, serverVersion),
		dispatcher: editor.NewDispatcher(connector, presence.CursorAI, displayName, logger),
		logger:     logger,
		sess:       doc.NewSession(),
	}
	s.registerTools()
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Shutdown releases the session. Call-once, like the session itself.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Stop(ctx)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect to a shared document via a websocket sync server"),
		mcp.WithString("doc_id",
			mcp.Required(),
			mcp.Description("The document ID, including the 'automerge:' prefix"),
		),
		mcp.WithString("sync_url",
			mcp.Description("Websocket sync server URL (default: wss://sync.automerge.org)"),
		),
	), s.handleConnect)

	s.mcp.AddTool(mcp.NewTool("get_text",
		mcp.WithDescription("Get the current text content of the document"),
	), s.handleGetText)

	s.mcp.AddTool(mcp.NewTool("regex_edit",
		mcp.WithDescription("Edit text using regex pattern matching. More LLM-friendly than "+
			"character-by-character edits. Multi-line mode is always on; use $1, $2 for "+
			"captured groups in the replacement."),
		mcp.WithString("pattern",
			mcp.Required(),
			mcp.Description("RE2 pattern to match against the document text"),
		),
		mcp.WithString("replacement",
			mcp.Required(),
			mcp.Description("Text to replace matches with; $1-style group references are expanded"),
		),
		mcp.WithBoolean("global",
			mcp.Description("If true, replace all matches; if false, replace only the first match"),
			mcp.DefaultBool(false),
		),
	), s.handleRegexEdit)

	s.mcp.AddTool(mcp.NewTool("insert_at_position",
		mcp.WithDescription("Insert text at a specific character position in the document"),
		mcp.WithNumber("position",
			mcp.Required(),
			mcp.Description("Character position to insert at (0-indexed; text length appends)"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to insert"),
		),
	), s.handleInsert)

	s.mcp.AddTool(mcp.NewTool("delete_range",
		mcp.WithDescription("Delete a range of characters from the document"),
		mcp.WithNumber("start",
			mcp.Required(),
			mcp.Description("Start position (0-indexed, inclusive)"),
		),
		mcp.WithNumber("end",
			mcp.Required(),
			mcp.Description("End position (0-indexed, exclusive)"),
		),
	), s.handleDelete)

	s.mcp.AddTool(mcp.NewTool("set_text",
		mcp.WithDescription("Replace the entire document text; transmitted as a minimal diff"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("New text content"),
		),
	), s.handleSetText)
}

// dispatch serializes command execution and renders rejections as tool
// errors the calling model can read and adapt to.
func (s *Server) dispatch(ctx context.Context, cmd editor.Command) (editor.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.Dispatch(ctx, s.sess, cmd)
}

func (s *Server) handleConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := req.RequireString("doc_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	syncURL := req.GetString("sync_url", "")

	if _, err := s.dispatch(ctx, editor.Connect{DocID: docID, SyncURL: syncURL}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if syncURL == "" {
		return mcp.NewToolResultText(fmt.Sprintf("Connected to document %s", docID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Connected to document %s via %s", docID, syncURL)), nil
}

func (s *Server) handleGetText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.dispatch(ctx, editor.ReadText{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out.Text), nil
}

func (s *Server) handleRegexEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replacement, err := req.RequireString("replacement")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	global := req.GetBool("global", false)

	out, err := s.dispatch(ctx, editor.RegexReplace{
		Pattern:     pattern,
		Replacement: replacement,
		Global:      global,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Applied %d replacement(s). Pattern: %s -> %s (splice: pos=%d, del=%d, ins=%d chars)",
		out.Count, pattern, replacement, out.Op.Pos, out.Op.Del, len([]rune(out.Op.Insert)),
	)), nil
}

func (s *Server) handleInsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	position, err := req.RequireInt("position")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.dispatch(ctx, editor.InsertAt{Position: position, Text: text})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Inserted %d characters at position %d",
		len([]rune(text)), out.Op.Pos,
	)), nil
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := req.RequireInt("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireInt("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.dispatch(ctx, editor.DeleteRange{Start: start, End: end})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Deleted %d characters from position %d to %d",
		out.Op.Del, start, end,
	)), nil
}

func (s *Server) handleSetText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.dispatch(ctx, editor.SetText{Text: text})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Set document text (%d characters) using splice (pos=%d, del=%d, ins=%d chars)",
		len([]rune(text)), out.Op.Pos, out.Op.Del, len([]rune(out.Op.Insert)),
	)), nil
}

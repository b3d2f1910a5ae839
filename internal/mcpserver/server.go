package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"reminders/internal/model"
	"reminders/internal/service"
)

const (
	serverName    = "reminders"
	serverVersion = "1.0.0"
)

// Server exposes the reminder store as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	store     *service.ReminderStore
	now       func() time.Time
}

func NewServer(store *service.ReminderStore) *Server {
	s := &Server{
		store: store,
		now:   time.Now,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, optionally filtered by status"),
			mcp.WithString("status", mcp.Description("Filter: open, completed, or empty for all")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_reminder",
			mcp.WithDescription("Get one reminder by id"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleGetReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Create a reminder. Custom repeats run at least every 30 minutes."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time of day, HH:MM")),
			mcp.WithString("repeat", mcp.Description("once, daily, weekly or custom (default: once)")),
			mcp.WithNumber("custom_minutes", mcp.Description("Interval in minutes when repeat is custom")),
			mcp.WithString("note_type", mcp.Description("text or todo (default: text)")),
			mcp.WithString("notes", mcp.Description("Free-form notes for text reminders")),
			mcp.WithString("todo_items", mcp.Description("Checklist items, one per line, for todo reminders")),
		),
		s.handleCreateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder. Omitted fields keep their current value; the notification is rescheduled."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("time", mcp.Description("New time of day, HH:MM")),
			mcp.WithString("repeat", mcp.Description("once, daily, weekly or custom")),
			mcp.WithNumber("custom_minutes", mcp.Description("Interval in minutes when repeat is custom")),
			mcp.WithString("note_type", mcp.Description("text or todo")),
			mcp.WithString("notes", mcp.Description("New notes")),
			mcp.WithString("todo_items", mcp.Description("Replacement checklist, one item per line")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle_completed",
			mcp.WithDescription("Flip a reminder between open and completed"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleToggleCompleted,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle_todo_item",
			mcp.WithDescription("Flip one checklist item between done and not done"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("todo_id", mcp.Required(), mcp.Description("Checklist item ID")),
		),
		s.handleToggleTodoItem,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder and cancel its notification"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_digest",
			mcp.WithDescription("Summarize upcoming, repeating and completed reminders"),
		),
		s.handleGetDigest,
	)
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := strings.ToLower(strings.TrimSpace(req.GetString("status", "")))

	var out []model.Reminder
	for _, r := range s.store.List() {
		switch status {
		case "open", "pending":
			if r.Completed {
				continue
			}
		case "completed", "done":
			if !r.Completed {
				continue
			}
		case "", "all":
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown status %q (use open, completed or all)", status)), nil
		}
		out = append(out, r)
	}

	if len(out) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(out)
}

func (s *Server) handleGetReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	r, ok := s.store.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}
	return jsonResult(r)
}

func (s *Server) handleCreateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if strings.TrimSpace(title) == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	if req.GetString("time", "") == "" {
		return mcp.NewToolResultError("time is required"), nil
	}

	d := model.Draft{Title: title, Repeat: model.RepeatOnce, NoteType: model.NoteText}
	if err := applyArgs(&d, req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved, err := s.store.Create(ctx, d)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}
	return savedResult(saved)
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	current, ok := s.store.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}

	d := model.DraftFrom(current)
	if v := req.GetString("title", ""); v != "" {
		d.Title = v
	}
	if err := applyArgs(&d, req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved, ok, err := s.store.Update(ctx, id, d)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}
	return savedResult(saved)
}

func (s *Server) handleToggleCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	r, ok := s.store.ToggleCompleted(ctx, id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}
	state := "open"
	if r.Completed {
		state = "completed"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s is now %s.", id, state)), nil
}

func (s *Server) handleToggleTodoItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	todoID := req.GetString("todo_id", "")
	if id == "" || todoID == "" {
		return mcp.NewToolResultError("id and todo_id are required"), nil
	}
	r, ok := s.store.ToggleTodoItem(ctx, id, todoID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("checklist item %s not found in reminder %s", todoID, id)), nil
	}
	return jsonResult(r)
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if !s.store.Remove(ctx, id) {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleGetDigest(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(service.Digest(s.store.List(), s.now(), service.PlainMarkup)), nil
}

// applyArgs overlays the optional schedule and note arguments on a draft.
func applyArgs(d *model.Draft, req mcp.CallToolRequest) error {
	if v := req.GetString("time", ""); v != "" {
		tod, err := model.ParseTimeOfDay(v)
		if err != nil {
			return fmt.Errorf("invalid time %q (use HH:MM)", v)
		}
		d.Time = tod
	}
	if v := req.GetString("repeat", ""); v != "" {
		repeat := model.Repeat(strings.ToLower(v))
		if !repeat.Valid() {
			return fmt.Errorf("invalid repeat %q (use once, daily, weekly or custom)", v)
		}
		d.Repeat = repeat
	}
	if v := req.GetFloat("custom_minutes", 0); v > 0 {
		d.CustomRepeatMinutes = int(v)
	}
	if d.Repeat == model.RepeatCustom && d.CustomRepeatMinutes <= 0 {
		return errors.New("custom_minutes is required when repeat is custom")
	}
	if v := req.GetString("note_type", ""); v != "" {
		noteType := model.NoteType(strings.ToLower(v))
		if !noteType.Valid() {
			return fmt.Errorf("invalid note_type %q (use text or todo)", v)
		}
		d.NoteType = noteType
	}
	if v := req.GetString("notes", ""); v != "" {
		d.Notes = v
	}
	if v := req.GetString("todo_items", ""); v != "" {
		d.TodoItems = model.TodoItemsFromLines(v)
	}
	return nil
}

func savedResult(saved service.Saved) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(saved.Reminder, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal reminder: %w", err)
	}
	text := string(output)
	if saved.IntervalRaised {
		text = fmt.Sprintf("Note: custom interval raised to the %d minute minimum.\n%s", model.MinCustomRepeatMinutes, text)
	}
	return mcp.NewToolResultText(text), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(output)), nil
}

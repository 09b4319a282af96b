package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func runMCP(ctrl *Controller) {

	s := server.NewMCPServer(
		"THR10 MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("thr10_describe-sysex",
		mcp.WithDescription("Returns the reverse-engineered SysEx notes for the THR10 amplifier."),
	)
	s.AddTool(docTool, docToolHandler)

	getTool := mcp.NewTool("thr10_get-settings",
		mcp.WithDescription("Refreshes the live settings from the THR10 and returns them as JSON, along with any conflicts against staged edits."),
	)
	s.AddTool(getTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling get settings request.")

		live, err := ctrl.RefreshFromDevice(5 * time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings: %v", err)
		}

		result := struct {
			Settings  *Settings           `json:"settings"`
			Conflicts map[string]Conflict `json:"conflicts,omitempty"`
		}{live, ctrl.Conflicts()}

		asJson, err := json.MarshalIndent(&result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal settings to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	setTool := mcp.NewTool("thr10_set-param",
		mcp.WithDescription("Stages one parameter edit by dotted path. Edits are written to the device on apply or after the debounce window."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dotted parameter path (e.g. amp.gain, delay.high_cut, reverb.kind).")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value: an integer, on/off, or an option name.")),
	)
	s.AddTool(setTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value, err := request.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		log.Println("[mcp] Staging", path, "=", value)

		if err := ctrl.SetParam(path, value); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Staged %s = %s.", path, value)), nil
	})

	applyTool := mcp.NewTool("thr10_apply-staged",
		mcp.WithDescription("Writes all staged edits to the THR10 immediately."),
	)
	s.AddTool(applyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Println("[mcp] Handling apply staged request.")

		wrote, err := ctrl.ApplyStaged()
		if err != nil {
			return nil, fmt.Errorf("failed to apply staged edits: %v", err)
		}
		if !wrote {
			return mcp.NewToolResultText("Nothing to apply."), nil
		}
		return mcp.NewToolResultText("Staged edits written to device."), nil
	})

	discardTool := mcp.NewTool("thr10_discard-staged",
		mcp.WithDescription("Drops all staged edits without touching the device."),
	)
	s.AddTool(discardTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctrl.DiscardStaged()
		return mcp.NewToolResultText("Staged edits discarded."), nil
	})

	conflictsTool := mcp.NewTool("thr10_get-conflicts",
		mcp.WithDescription("Returns parameters where staged edits collide with changes made on the device itself."),
	)
	s.AddTool(conflictsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asJson, err := json.MarshalIndent(ctrl.Conflicts(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal conflicts to JSON: %v", err)
		}
		return mcp.NewToolResultText(string(asJson)), nil
	})

	log.Println("Starting THR10 MCP server...")

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}

}

//go:embed thr10_sysex_notes.txt
var sysexDoc string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling SysEx documentation request.")

	return mcp.NewToolResultText(sysexDoc), nil
}

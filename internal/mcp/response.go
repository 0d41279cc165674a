// Package mcp wires service.Service operations into an MCP/JSON-RPC
// stdio server, grounded on the teacher's internal/mcp server: one
// mcp.NewServer, one AddTool call per tool with a jsonschema input
// schema, and a uniform JSON response envelope with IsError set on
// failure rather than a protocol-level error.
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
)

// jsonRPCCode maps a Kind to the application error-code range spec.md
// §6 reserves for JSON-RPC (-32000..-32099), the protocol-reserved
// codes (-32700..-32603) being handled upstream by the SDK transport.
func jsonRPCCode(k cerrors.Kind) int {
	switch k {
	case cerrors.KindInvalidRequest:
		return -32000
	case cerrors.KindNotFound:
		return -32001
	case cerrors.KindValidationFailed:
		return -32002
	case cerrors.KindParseError:
		return -32003
	case cerrors.KindIoError:
		return -32004
	case cerrors.KindTimeout:
		return -32005
	case cerrors.KindCacheError:
		return -32006
	default:
		return -32099 // Internal and anything unrecognized
	}
}

// jsonResponse wraps data as a single JSON text content block.
func jsonResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal tool response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResponse reports a tool-level failure inside the result, per
// the MCP SDK contract: protocol-level errors hide the failure from
// the calling model, so application errors always set IsError=true
// instead.
func errorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	code := jsonRPCCode(cerrors.KindInternal)
	kind := cerrors.KindInternal
	if ce, ok := err.(*cerrors.CodelensError); ok {
		kind = ce.Kind
		code = jsonRPCCode(kind)
	}

	resp, marshalErr := jsonResponse(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
		"kind":      string(kind),
		"code":      code,
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	resp.IsError = true
	return resp, nil
}

package matlabmcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

// Error types reported in tool results.
const (
	errTypeMatlabExecution = "MatlabExecutionError"
	errTypeEngine          = "EngineError"
	errTypeIO              = "IOError"
	errTypeKey             = "KeyError"
	errTypeValue           = "ValueError"
	errTypeType            = "TypeError"
)

type runMatlabCodeArgs struct {
	Code string `json:"code"`
}

type getVariableArgs struct {
	VariableName string `json:"variable_name"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "runMatlabCode",
		Description: "Run MATLAB code in the shared MATLAB session",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "The MATLAB code to execute",
				},
			},
			Required: []string{"code"},
		},
	}, s.runMatlabCode)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "getVariable",
		Description: "Get a variable from the MATLAB base workspace",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"variable_name": {
					Type:        "string",
					Description: "Name of the workspace variable to fetch",
				},
			},
			Required: []string{"variable_name"},
		},
	}, s.getVariable)
}

func (s *Server) runMatlabCode(ctx context.Context, req *mcp.CallToolRequest, args runMatlabCodeArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Code) == "" {
		return errorResult(errTypeValue, "", "code must not be empty"), nil, nil
	}

	s.log.Info("Executing MATLAB code", "bytes", len(args.Code))

	res, err := s.engine.ExecuteCode(ctx, args.Code)
	if err != nil {
		s.log.Warn("Execution failed", "error", err)

		return errorResultFromErr(err), nil, nil
	}

	return successResult(map[string]any{
		"status": "success",
		"output": res.Output,
	}), nil, nil
}

func (s *Server) getVariable(ctx context.Context, req *mcp.CallToolRequest, args getVariableArgs) (*mcp.CallToolResult, any, error) {
	name := strings.TrimSpace(args.VariableName)
	if name == "" {
		return errorResult(errTypeValue, "", "variable_name must not be empty"), nil, nil
	}

	s.log.Info("Fetching workspace variable", "variable", name)

	value, err := s.engine.Workspace(ctx, name)
	if err != nil {
		s.log.Warn("Workspace fetch failed", "variable", name, "error", err)

		return errorResultFromErr(err), nil, nil
	}

	return successResult(map[string]any{
		"status":   "success",
		"variable": name,
		"value":    value,
	}), nil, nil
}

// classifyError maps bridge errors to the error_type taxonomy reported in
// tool results. The second return is the execution stage, when known.
func classifyError(err error) (errorType, stage string) {
	var execErr *errors.ExecError
	if stderrors.As(err, &execErr) {
		return errTypeMatlabExecution, execErr.Stage
	}

	if stderrors.Is(err, errors.ErrVariableNotFound) {
		return errTypeKey, ""
	}

	var decodeErr *errors.ValueDecodeError
	if stderrors.As(err, &decodeErr) {
		return errTypeType, ""
	}

	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return errTypeIO, ""
	}

	// Connection failures and anything else unexpected.
	return errTypeEngine, ""
}

func errorResultFromErr(err error) *mcp.CallToolResult {
	errorType, stage := classifyError(err)

	return errorResult(errorType, stage, err.Error())
}

func errorResult(errorType, stage, message string) *mcp.CallToolResult {
	dict := map[string]any{
		"status":     "error",
		"error_type": errorType,
		"message":    message,
	}
	if stage != "" {
		dict["stage"] = stage
	}

	result := resultFromDict(dict)
	result.IsError = true

	return result
}

func successResult(dict map[string]any) *mcp.CallToolResult {
	return resultFromDict(dict)
}

func resultFromDict(dict map[string]any) *mcp.CallToolResult {
	data, err := json.Marshal(dict)
	if err != nil {
		// Only reachable with non-serializable values, which the engine
		// never produces.
		data = []byte(`{"status":"error","error_type":"TypeError","message":"result not serializable"}`)
	}

	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: dict,
	}
}

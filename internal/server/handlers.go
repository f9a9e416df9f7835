package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/pixlator/internal/imaging"
	"github.com/ironsheep/pixlator/internal/pattern"
	"github.com/ironsheep/pixlator/internal/store"
)

// DefaultExportPixelSize is the block edge used when pattern_export gets no
// pixel_size.
const DefaultExportPixelSize = 10

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pattern_upload", "pattern_process").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Rejected arguments return code -32602, other tool failures -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, pattern.ErrInvalidParams) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "pattern_upload":
		return s.handlePatternUpload(args)
	case "pattern_process":
		return s.handlePatternProcess(args)
	case "pattern_export":
		return s.handlePatternExport(args)

	// History
	case "pattern_history":
		return s.handlePatternHistory(args)
	case "pattern_history_detail":
		return s.handlePatternHistoryDetail(args)
	case "pattern_delete":
		return s.handlePatternDelete(args)
	case "pattern_stats":
		return s.handlePatternStats(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON marshals v to JSON, panicking on error.
func mustMarshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal tool result: %v", err))
	}
	return string(data)
}

// unmarshalArgs decodes tool arguments. A missing argument object is treated
// as empty so tools without required arguments can be called bare.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", pattern.ErrInvalidParams, err)
	}
	return nil
}

func requireFileID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: file_id is required", pattern.ErrInvalidParams)
	}
	return nil
}

// Upload

type patternUploadArgs struct {
	Path          string `json:"path"`
	ContentBase64 string `json:"content_base64"`
	Filename      string `json:"filename"`
}

func (s *Server) handlePatternUpload(args json.RawMessage) (interface{}, error) {
	var a patternUploadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		content []byte
		name    string
		err     error
	)
	switch {
	case a.Path != "":
		content, err = os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		name = filepath.Base(a.Path)
	case a.ContentBase64 != "":
		if a.Filename == "" {
			return nil, fmt.Errorf("%w: filename is required with content_base64", pattern.ErrInvalidParams)
		}
		content, err = base64.StdEncoding.DecodeString(a.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: content_base64: %v", pattern.ErrInvalidParams, err)
		}
		name = a.Filename
	default:
		return nil, fmt.Errorf("%w: path or content_base64 is required", pattern.ErrInvalidParams)
	}

	info, err := s.store.SaveUpload(content, name)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Processing

type patternProcessArgs struct {
	FileID        string `json:"file_id"`
	MaxSize       *int   `json:"max_size"`
	ColorCount    int    `json:"color_count"`
	NumberingMode string `json:"numbering_mode"`
}

// ProcessResult is returned by pattern_process.
type ProcessResult struct {
	FileID string             `json:"file_id"`
	Source *imaging.ImageInfo `json:"source"`
	Result *pattern.Result    `json:"result"`
}

func (s *Server) handlePatternProcess(args json.RawMessage) (interface{}, error) {
	var a patternProcessArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFileID(a.FileID); err != nil {
		return nil, err
	}

	params := pattern.Params{
		MaxSize:       s.cfg.DefaultMaxSize,
		ColorCount:    a.ColorCount,
		NumberingMode: pattern.Mode(a.NumberingMode),
	}
	if a.MaxSize != nil {
		params.MaxSize = *a.MaxSize
	}
	if s.cfg.MaxProcessingSize > 0 && params.MaxSize > s.cfg.MaxProcessingSize {
		return nil, fmt.Errorf("%w: max_size %d exceeds limit %d", pattern.ErrInvalidParams, params.MaxSize, s.cfg.MaxProcessingSize)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	path, err := s.store.Path(a.FileID)
	if err != nil {
		return nil, err
	}
	source, err := imaging.LoadImageInfo(s.cache, path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if s.cfg.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProcessTimeout)
		defer cancel()
	}
	res, err := s.process(ctx, img, params)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", a.FileID, err)
	}

	if _, err := s.store.SaveResult(a.FileID, res); err != nil {
		return nil, err
	}
	return &ProcessResult{FileID: a.FileID, Source: source, Result: res}, nil
}

// Export

type patternExportArgs struct {
	FileID       string `json:"file_id"`
	ExportType   string `json:"export_type"`
	PixelSize    *int   `json:"pixel_size"`
	ShowNumbers  bool   `json:"show_numbers"`
	ShowGrid     bool   `json:"show_grid"`
	GridEvery    *int   `json:"grid_every"`
	GridColor    string `json:"grid_color"`
	IncludeImage bool   `json:"include_image"`

	Region *imaging.CellRegion `json:"region"`
}

// ExportResponse is returned by pattern_export.
type ExportResponse struct {
	*imaging.ExportResult
	File *store.ExportInfo `json:"file"`
}

func (s *Server) handlePatternExport(args json.RawMessage) (interface{}, error) {
	var a patternExportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFileID(a.FileID); err != nil {
		return nil, err
	}

	opts := imaging.ExportOptions{
		PixelSize:   DefaultExportPixelSize,
		Type:        a.ExportType,
		ShowNumbers: a.ShowNumbers,
		ShowGrid:    a.ShowGrid,
		GridEvery:   imaging.DefaultGridEvery,
		GridColor:   a.GridColor,
		Region:      a.Region,
	}
	if a.PixelSize != nil {
		opts.PixelSize = *a.PixelSize
	}
	if a.GridEvery != nil {
		opts.GridEvery = *a.GridEvery
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pattern.ErrInvalidParams, err)
	}

	saved, err := s.store.LoadResult(a.FileID)
	if err != nil {
		return nil, err
	}
	var variant string
	if r := a.Region; r != nil {
		if err := r.Validate(saved.Dimensions); err != nil {
			return nil, fmt.Errorf("%w: %v", pattern.ErrInvalidParams, err)
		}
		variant = fmt.Sprintf("%d_%d_%d_%d", r.X1, r.Y1, r.X2, r.Y2)
	}
	exp, data, err := imaging.Export(&saved.Result, opts)
	if err != nil {
		return nil, err
	}
	file, err := s.store.SaveExport(a.FileID, opts.PixelSize, variant, exp.Format, data)
	if err != nil {
		return nil, err
	}
	if !a.IncludeImage {
		exp.ImageBase64 = ""
	}
	return &ExportResponse{ExportResult: exp, File: file}, nil
}

// History

func (s *Server) handlePatternHistory(args json.RawMessage) (interface{}, error) {
	history, err := s.store.History()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"files": history,
		"count": len(history),
	}, nil
}

type fileIDArgs struct {
	FileID string `json:"file_id"`
}

func (s *Server) handlePatternHistoryDetail(args json.RawMessage) (interface{}, error) {
	var a fileIDArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFileID(a.FileID); err != nil {
		return nil, err
	}
	if _, err := s.store.Path(a.FileID); err != nil {
		return nil, err
	}
	return s.store.LoadResult(a.FileID)
}

func (s *Server) handlePatternDelete(args json.RawMessage) (interface{}, error) {
	var a fileIDArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requireFileID(a.FileID); err != nil {
		return nil, err
	}
	path, err := s.store.Path(a.FileID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(a.FileID); err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	return map[string]interface{}{
		"deleted": a.FileID,
	}, nil
}

func (s *Server) handlePatternStats(args json.RawMessage) (interface{}, error) {
	return s.store.Stats()
}

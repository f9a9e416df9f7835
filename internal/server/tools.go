package server

import (
	"fmt"

	"github.com/ironsheep/pixlator/internal/imaging"
	"github.com/ironsheep/pixlator/internal/pattern"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func fileIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Stored filename returned by pattern_upload",
	}
}

func modeNames() []string {
	names := make([]string, len(pattern.Modes))
	for i, m := range pattern.Modes {
		names[i] = string(m)
	}
	return names
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "pattern_upload",
			Description: "Store an image for later processing. Give either a local path or base64 content with a filename. Returns the stored file_id, size and dimensions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"content_base64": map[string]interface{}{
						"type":        "string",
						"description": "Base64-encoded image bytes",
					},
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "Original filename; required with content_base64",
					},
				},
			},
		},
		{
			Name:        "pattern_process",
			Description: "Convert an uploaded image into a numbered pixel pattern: resize, optionally reduce colors, number lines and build per-color and per-line statistics. The result is saved for history and export.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_id": fileIDProperty(),
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest edge of the pattern in cells",
						"default":     pattern.DefaultMaxSize,
						"minimum":     1,
					},
					"color_count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to reduce to; 0 keeps the original colors",
						"default":     0,
						"minimum":     0,
					},
					"numbering_mode": map[string]interface{}{
						"type":        "string",
						"description": "How cells are grouped into numbered lines",
						"enum":        modeNames(),
						"default":     string(pattern.DefaultMode),
					},
				},
				"required": []string{"file_id"},
			},
		},
		{
			Name:        "pattern_export",
			Description: "Render a processed pattern as an image with every cell magnified to a block, optionally labelled with its line number. The image is saved next to the upload.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_id": fileIDProperty(),
					"export_type": map[string]interface{}{
						"type":        "string",
						"description": "Output format",
						"enum":        []string{"png", "jpg"},
						"default":     "png",
					},
					"pixel_size": map[string]interface{}{
						"type":        "integer",
						"description": fmt.Sprintf("Edge length in pixels of one cell; the full chart may not exceed %d pixels", imaging.MaxExportPixels),
						"default":     DefaultExportPixelSize,
						"minimum":     1,
					},
					"show_numbers": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw line numbers on blocks large enough to hold them",
						"default":     false,
					},
					"show_grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Outline cells like a stitch chart",
						"default":     false,
					},
					"grid_every": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a heavy grid line every N cells; 0 for cell lines only",
						"default":     imaging.DefaultGridEvery,
						"minimum":     0,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid color as #RRGGBB or #RRGGBBAA",
						"default":     imaging.DefaultGridColor,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Export only these cells; x2 and y2 are exclusive",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer", "minimum": 0},
							"y1": map[string]interface{}{"type": "integer", "minimum": 0},
							"x2": map[string]interface{}{"type": "integer", "minimum": 1},
							"y2": map[string]interface{}{"type": "integer", "minimum": 1},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the encoded image as base64",
						"default":     false,
					},
				},
				"required": []string{"file_id"},
			},
		},

		// History
		{
			Name:        "pattern_history",
			Description: "List uploaded images, newest first, with dimensions and whether a processing result exists.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pattern_history_detail",
			Description: "Return the saved processing result of an upload.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_id": fileIDProperty(),
				},
				"required": []string{"file_id"},
			},
		},
		{
			Name:        "pattern_delete",
			Description: "Delete an upload together with its processing result and exports.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"file_id": fileIDProperty(),
				},
				"required": []string{"file_id"},
			},
		},
		{
			Name:        "pattern_stats",
			Description: "Report how many files are stored, their total size and how many have been processed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

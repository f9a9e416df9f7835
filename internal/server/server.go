package server

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/pixlator/internal/cluster"
	"github.com/ironsheep/pixlator/internal/config"
	"github.com/ironsheep/pixlator/internal/imaging"
	"github.com/ironsheep/pixlator/internal/pattern"
	"github.com/ironsheep/pixlator/internal/store"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Server handles MCP protocol communication
type Server struct {
	cfg       config.Config
	cache     *imaging.ImageCache
	store     *store.Store
	processor *pattern.Processor
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server backed by the upload directory in cfg. Files older
// than the retention window are removed on startup.
func New(cfg config.Config) (*Server, error) {
	st, err := store.New(cfg.UploadDir, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	if _, err := st.Cleanup(cfg.Retention()); err != nil {
		log.Printf("Cleanup failed: %v", err)
	}

	processor := pattern.NewProcessor(&cluster.KMeans{}, cfg.ClusterSeed)
	processor.Debug = cfg.Debug

	return &Server{
		cfg:       cfg,
		cache:     imaging.NewImageCache(),
		store:     st,
		processor: processor,
	}, nil
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

const (
	minRequestSize  = 1024 * 1024
	requestOverhead = 64 * 1024
)

// maxRequestSize is the longest request line Serve accepts: room for a
// base64 upload of MaxFileSize bytes plus its JSON envelope.
func (s *Server) maxRequestSize() int {
	n := minRequestSize
	if s.cfg.MaxFileSize > 0 {
		if m := base64.StdEncoding.EncodedLen(int(s.cfg.MaxFileSize)) + requestOverhead; m > n {
			n = m
		}
	}
	return n
}

// Serve answers newline-delimited requests from r on w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, s.maxRequestSize())

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "pixlator",
				"version": Version,
			},
		},
	}
}

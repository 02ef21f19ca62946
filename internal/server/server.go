package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/config"
	"github.com/ironsheep/manga-bubble-detector/internal/imaging"
	"github.com/ironsheep/manga-bubble-detector/internal/pipeline"
)

// Name and Version identify the server in the initialize handshake.
const (
	Name    = "bubble-detector"
	Version = "0.1.0"
)

const (
	protocolVersion = "2024-11-05"
	maxRequestSize  = 1024 * 1024

	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeToolFailed     = -32000
)

// Server answers MCP requests with the dataset and detection tools.
type Server struct {
	cache    *imaging.ImageCache
	settings *config.Settings
	pipeline *pipeline.Pipeline
	log      *zap.Logger
}

// MCPRequest is one JSON-RPC 2.0 request or notification.
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse carries either Result or Error.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError is a JSON-RPC error object.
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a server for the given settings. Logs go to log, never to the
// protocol stream.
func New(s *config.Settings, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cache:    imaging.NewImageCache(),
		settings: s,
		pipeline: pipeline.New(s, log),
		log:      log,
	}
}

// Run serves requests read line by line from in, writing responses to out,
// until in is exhausted. Lines that are not JSON are logged and dropped.
func (s *Server) Run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("dropping unparsable request", zap.Int("bytes", len(line)), zap.Error(err))
			continue
		}

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read requests: %w", err)
	}
	return nil
}

// handleRequest routes one request. Notifications get no response.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.log.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

	switch {
	case req.Method == "initialize":
		return s.handleInitialize(req)
	case strings.HasPrefix(req.Method, "notifications/"):
		return nil
	case req.Method == "tools/list":
		return s.handleToolsList(req)
	case req.Method == "tools/call":
		return s.handleToolsCall(req)
	case req.Method == "ping":
		return s.result(req.ID, map[string]interface{}{})
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method, "")
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return s.result(req.ID, map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    Name,
			"version": Version,
		},
	})
}

func (s *Server) result(id, v interface{}) *MCPResponse {
	return &MCPResponse{JSONRPC: "2.0", ID: id, Result: v}
}

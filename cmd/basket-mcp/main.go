// Command basket-mcp bridges stdio MCP clients to the /mcp endpoint of a
// running basket-server.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/basket/internal/common"
)

const defaultServerURL = "http://localhost:8080"

// StdioProxy forwards newline-delimited JSON-RPC messages to an HTTP MCP
// endpoint and writes each response as one line.
type StdioProxy struct {
	endpoint   string
	httpClient *http.Client
	logger     *common.Logger
}

// NewStdioProxy creates a proxy for the MCP endpoint of serverURL.
func NewStdioProxy(serverURL string, logger *common.Logger) *StdioProxy {
	return &StdioProxy{
		endpoint: strings.TrimRight(serverURL, "/") + "/mcp",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func main() {
	serverURL := os.Getenv("BASKET_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	flag.StringVar(&serverURL, "server", serverURL, "basket-server base URL")
	level := flag.String("log-level", "warn", "log level for stderr diagnostics")
	flag.Parse()

	// stdout carries protocol traffic, so diagnostics go to stderr only
	logger := common.NewLogger(*level)

	proxy := NewStdioProxy(serverURL, logger)
	if err := proxy.Run(os.Stdin, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("Proxy stopped")
		os.Exit(1)
	}
}

// Run proxies messages from r to the server until r is exhausted.
// Transport failures are returned to the client as JSON-RPC errors.
func (p *StdioProxy) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp, err := p.forward(line)
		if err != nil {
			p.logger.Warn().Err(err).Str("endpoint", p.endpoint).Msg("MCP request failed")
			resp = jsonRPCError(extractID(line), -32000, err.Error())
		}
		if resp == nil {
			continue // notification, no response expected
		}

		if _, err := w.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (p *StdioProxy) forward(body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return bytes.TrimSpace(respBody), nil
}

// extractID pulls the "id" field from a JSON-RPC request for error responses.
func extractID(msg []byte) json.RawMessage {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msg, &req); err != nil || req.ID == nil {
		return json.RawMessage("null")
	}
	return req.ID
}

func jsonRPCError(id json.RawMessage, code int, message string) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
	return data
}

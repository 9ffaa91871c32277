package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/basket/internal/common"
)

func TestStdioProxy_ForwardsMessages(t *testing.T) {
	var received []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcp", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		received = append(received, string(body))

		if strings.Contains(string(body), "notifications/") {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}` + "\n"))
	}))
	defer ts.Close()

	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	var out bytes.Buffer

	proxy := NewStdioProxy(ts.URL+"/", common.NewSilentLogger())
	require.NoError(t, proxy.Run(in, &out))

	assert.Len(t, received, 2)
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", out.String())
}

func TestStdioProxy_ServerErrorBecomesJSONRPCError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer ts.Close()

	var out bytes.Buffer
	proxy := NewStdioProxy(ts.URL, common.NewSilentLogger())
	require.NoError(t, proxy.Run(strings.NewReader(`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`+"\n"), &out))

	var resp struct {
		ID    string `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, -32000, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "500")
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, `7`, string(extractID([]byte(`{"id":7}`))))
	assert.Equal(t, `null`, string(extractID([]byte(`{"method":"x"}`))))
	assert.Equal(t, `null`, string(extractID([]byte(`garbage`))))
}

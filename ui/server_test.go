package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{"madlib playground", `value="sexpr"`, "/static/playground.js", "greet = (name)"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("index page lacks %q", want)
		}
	}

	resp, err = http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status for unknown page = %d", resp.StatusCode)
	}
}

func TestStatic(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/static/playground.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestParseEndpoint(t *testing.T) {
	srv := newTestServer(t)

	post := func(t *testing.T, query, body string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Post(srv.URL+"/parse"+query, "text/plain", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return resp, string(data)
	}

	t.Run("sexpr", func(t *testing.T) {
		resp, body := post(t, "?format=sexpr", "x = 1")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d: %s", resp.StatusCode, body)
		}
		if want := "(program (variable_declarator name: (identifier) value: (number)))\n"; body != want {
			t.Errorf("body = %q, want %q", body, want)
		}
	})

	t.Run("json", func(t *testing.T) {
		resp, body := post(t, "", "x = ")
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if n := resp.Header.Get("X-Madlib-Diagnostics"); n != "1" {
			t.Errorf("X-Madlib-Diagnostics = %q, want 1", n)
		}
		var out struct {
			Root struct {
				Kind string `json:"kind"`
			} `json:"root"`
		}
		if err := json.Unmarshal([]byte(body), &out); err != nil {
			t.Fatalf("Unmarshal: %v\n%s", err, body)
		}
		if out.Root.Kind != "program" {
			t.Errorf("root kind = %q", out.Root.Kind)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, body := post(t, "?format=xml", "x = 1")
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "unknown format") {
			t.Errorf("status %d: %s", resp.StatusCode, body)
		}
	})
}

type testResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
	id   int
}

func dial(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) call(method string, params any, result any) *rpcError {
	c.t.Helper()
	c.id++
	if err := c.conn.WriteJSON(map[string]any{"id": c.id, "method": method, "params": params}); err != nil {
		c.t.Fatalf("write %s: %v", method, err)
	}
	var resp testResponse
	if err := c.conn.ReadJSON(&resp); err != nil {
		c.t.Fatalf("read %s: %v", method, err)
	}
	if resp.ID != c.id {
		c.t.Errorf("response id = %d, want %d", resp.ID, c.id)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			c.t.Fatalf("decode %s result: %v\n%s", method, err, resp.Result)
		}
	}
	return nil
}

func TestWebSocketParseAndEdit(t *testing.T) {
	c := dial(t, newTestServer(t))

	var parsed treeResult
	if err := c.call("parse", map[string]any{"text": "a = 1\nb = 2\nc = 3\nd = 4\n"}, &parsed); err != nil {
		t.Fatalf("parse: %v", err.Message)
	}
	if parsed.Statements != 4 || len(parsed.Diagnostics) != 0 {
		t.Errorf("parse = %+v", parsed)
	}

	var edited treeResult
	if err := c.call("edit", map[string]any{"start": 16, "end": 17, "text": "33"}, &edited); err != nil {
		t.Fatalf("edit: %v", err.Message)
	}
	if edited.Reused != 2 || edited.Statements != 4 {
		t.Errorf("edit = %+v", edited)
	}

	var broken treeResult
	if err := c.call("edit", map[string]any{"start": 4, "end": 5, "text": "\"x"}, &broken); err != nil {
		t.Fatalf("edit: %v", err.Message)
	}
	if len(broken.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", broken.Diagnostics)
	}
	d := broken.Diagnostics[0]
	if d.Kind != "UnterminatedString" || d.Category != "lexical" || d.Start != 6 || d.End != 6 || d.Line != 1 || d.Column != 7 {
		t.Errorf("diagnostic = %+v", d)
	}
}

func TestWebSocketQueries(t *testing.T) {
	c := dial(t, newTestServer(t))
	if err := c.call("parse", map[string]any{"text": "a = 1 // one"}, nil); err != nil {
		t.Fatalf("parse: %v", err.Message)
	}

	var toks struct {
		Tokens []tokenResult `json:"tokens"`
	}
	if err := c.call("tokens", nil, &toks); err != nil {
		t.Fatalf("tokens: %v", err.Message)
	}
	var kinds []string
	for _, tok := range toks.Tokens {
		kinds = append(kinds, tok.Kind)
	}
	if got := strings.Join(kinds, " "); got != "Ident = Number" {
		t.Errorf("tokens = %s", got)
	}

	if err := c.call("tokens", map[string]any{"trivia": true}, &toks); err != nil {
		t.Fatalf("tokens: %v", err.Message)
	}
	if last := toks.Tokens[len(toks.Tokens)-1]; last.Kind != "Comment" || last.Literal != "// one" {
		t.Errorf("last token = %+v", last)
	}

	var formatted struct {
		Text string `json:"text"`
	}
	if err := c.call("format", map[string]any{"name": "sexpr"}, &formatted); err != nil {
		t.Fatalf("format: %v", err.Message)
	}
	if !strings.HasPrefix(formatted.Text, "(program (variable_declarator") {
		t.Errorf("format = %q", formatted.Text)
	}

	var path struct {
		Path []struct {
			Kind string `json:"kind"`
		} `json:"path"`
	}
	if err := c.call("path", map[string]any{"offset": 4}, &path); err != nil {
		t.Fatalf("path: %v", err.Message)
	}
	var steps []string
	for _, s := range path.Path {
		steps = append(steps, s.Kind)
	}
	if got := strings.Join(steps, " > "); got != "program > variable_declarator > number" {
		t.Errorf("path = %s", got)
	}
}

func TestWebSocketErrors(t *testing.T) {
	c := dial(t, newTestServer(t))

	tests := []struct {
		name   string
		method string
		params any
		code   int
	}{
		{"edit before parse", "edit", map[string]any{"start": 0, "end": 0, "text": "x"}, codeServerError},
		{"unknown method", "compile", nil, codeMethodNotFound},
		{"format before parse", "format", map[string]any{"name": "sexpr"}, codeServerError},
		{"bad params", "parse", map[string]any{"text": 42}, codeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.call(tt.method, tt.params, nil)
			if err == nil || err.Code != tt.code {
				t.Errorf("error = %+v, want code %d", err, tt.code)
			}
		})
	}

	if err := c.call("parse", map[string]any{"text": "a = 1"}, nil); err != nil {
		t.Fatalf("parse: %v", err.Message)
	}
	if err := c.call("edit", map[string]any{"start": 3, "end": 99, "text": ""}, nil); err == nil || err.Code != codeInvalidParams {
		t.Errorf("out of range edit: %+v", err)
	}
	if err := c.call("format", map[string]any{"name": "xml"}, nil); err == nil || err.Code != codeInvalidParams {
		t.Errorf("unknown format: %+v", err)
	}
}

func TestWebSocketOrigin(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"same origin", srv.URL, true},
		{"foreign origin", "http://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if conn != nil {
				conn.Close()
			}
			if tt.ok && err != nil {
				t.Fatalf("Dial: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("handshake from %s should be refused", tt.origin)
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %+v, want 403", resp)
				}
			}
		})
	}
}

func TestEditSizeLimit(t *testing.T) {
	sess := &session{ctx: t.Context()}

	params, _ := json.Marshal(map[string]any{"text": strings.Repeat("a", maxSourceSize)})
	if resp := sess.rpcParse(rpcRequest{ID: 1, Params: params}); resp.Error != nil {
		t.Fatalf("parse: %+v", resp.Error)
	}

	params, _ = json.Marshal(map[string]any{"start": 0, "end": 0, "text": "b"})
	resp := sess.rpcEdit(rpcRequest{ID: 2, Params: params})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("growing edit: error = %+v, want code %d", resp.Error, codeInvalidParams)
	}
	if len(sess.tree.Source) != maxSourceSize {
		t.Errorf("rejected edit changed the source to %d bytes", len(sess.tree.Source))
	}

	params, _ = json.Marshal(map[string]any{"start": 0, "end": 1, "text": "b"})
	if resp := sess.rpcEdit(rpcRequest{ID: 3, Params: params}); resp.Error != nil {
		t.Errorf("same size edit: %+v", resp.Error)
	}
}

package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dhamidi/madlib/format"
	"github.com/dhamidi/madlib/madlib/parser"
)

const maxSourceSize = 4 << 20

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

func errorResponse(id any, code int, msg string, args ...any) rpcResponse {
	return rpcResponse{ID: id, Error: &rpcError{Code: code, Message: fmt.Sprintf(msg, args...)}}
}

// session is the per-connection state: the last tree, which edits are
// applied to.
type session struct {
	ctx  context.Context
	tree *parser.Tree
}

type treeResult struct {
	SExpr       string       `json:"sexpr"`
	Tree        *parser.Tree `json:"tree,omitempty"`
	Diagnostics []diagnostic `json:"diagnostics"`
	Reused      int          `json:"reused"`
	Statements  int          `json:"statements"`
}

type diagnostic struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

type tokenResult struct {
	Kind    string `json:"kind"`
	Mode    string `json:"mode"`
	Literal string `json:"literal"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warningf("websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sess := &session{ctx: ctx}
	log.Debugf("playground client connected from %s", r.RemoteAddr)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("websocket read: %s", err)
			}
			return
		}
		var resp rpcResponse
		var req rpcRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			resp = errorResponse(nil, codeParseError, "invalid request: %s", err)
		} else {
			resp = sess.handle(req)
		}
		data, err := json.Marshal(resp)
		if err != nil {
			log.Errorf("marshal response to %s: %s", req.Method, err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (sess *session) handle(req rpcRequest) rpcResponse {
	switch req.Method {
	case "parse":
		return sess.rpcParse(req)
	case "edit":
		return sess.rpcEdit(req)
	case "tokens":
		return sess.rpcTokens(req)
	case "format":
		return sess.rpcFormat(req)
	case "formats":
		return rpcResponse{ID: req.ID, Result: map[string]any{"formats": format.Names()}}
	case "path":
		return sess.rpcPath(req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, "unknown method: %s", req.Method)
	}
}

func (sess *session) rpcParse(req rpcRequest) rpcResponse {
	var p struct {
		Text string `json:"text"`
		Tree bool   `json:"tree"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if len(p.Text) > maxSourceSize {
		return errorResponse(req.ID, codeInvalidParams, "source exceeds %d bytes", maxSourceSize)
	}
	sess.tree = parser.Parse(sess.ctx, []byte(p.Text))
	return rpcResponse{ID: req.ID, Result: newTreeResult(sess.tree, p.Tree)}
}

func (sess *session) rpcEdit(req rpcRequest) rpcResponse {
	var p struct {
		Start int    `json:"start"`
		End   int    `json:"end"`
		Text  string `json:"text"`
		Tree  bool   `json:"tree"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if sess.tree == nil {
		return errorResponse(req.ID, codeServerError, "edit before parse")
	}

	src, edit, err := parser.ApplyEdit(sess.tree.Source, p.Start, p.End, []byte(p.Text))
	if err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if len(src) > maxSourceSize {
		return errorResponse(req.ID, codeInvalidParams, "source exceeds %d bytes", maxSourceSize)
	}
	tree, err := parser.Reparse(sess.ctx, sess.tree, edit, src)
	if err != nil {
		return errorResponse(req.ID, codeServerError, "reparse: %s", err)
	}
	log.Debugf("edit %s reused %d statements", edit, tree.Reused)
	sess.tree = tree
	return rpcResponse{ID: req.ID, Result: newTreeResult(tree, p.Tree)}
}

func (sess *session) rpcTokens(req rpcRequest) rpcResponse {
	var p struct {
		Trivia bool `json:"trivia"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "%s", err)
		}
	}
	if sess.tree == nil {
		return errorResponse(req.ID, codeServerError, "tokens before parse")
	}

	tokens := []tokenResult{}
	for _, tok := range sess.tree.Tokens() {
		if !p.Trivia && tok.Kind.IsTrivia() {
			continue
		}
		tr := tokenResult{
			Kind:    tok.Kind.String(),
			Mode:    tok.Mode.String(),
			Literal: tok.Literal,
			Start:   tok.Span.Start.Offset,
			End:     tok.Span.End.Offset,
		}
		if tok.Err != nil {
			tr.Error = tok.Err.Kind.String()
		}
		tokens = append(tokens, tr)
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"tokens": tokens}}
}

func (sess *session) rpcFormat(req rpcRequest) rpcResponse {
	var p struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if sess.tree == nil {
		return errorResponse(req.ID, codeServerError, "format before parse")
	}

	var buf bytes.Buffer
	enc, err := format.New(p.Name, &buf)
	if err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if err := enc.Encode(sess.tree); err != nil {
		return errorResponse(req.ID, codeServerError, "%s", err)
	}
	return rpcResponse{ID: req.ID, Result: map[string]string{"text": buf.String()}}
}

// rpcPath returns the chain of nodes enclosing an offset, outermost first.
func (sess *session) rpcPath(req rpcRequest) rpcResponse {
	var p struct {
		Offset int `json:"offset"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "%s", err)
	}
	if sess.tree == nil {
		return errorResponse(req.ID, codeServerError, "path before parse")
	}

	type step struct {
		Kind  string `json:"kind"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	}
	path := []step{}
	for _, n := range sess.tree.Path(p.Offset) {
		path = append(path, step{Kind: n.Kind.String(), Start: n.Span.Start.Offset, End: n.Span.End.Offset})
	}
	return rpcResponse{ID: req.ID, Result: map[string]any{"path": path}}
}

func newTreeResult(tree *parser.Tree, full bool) *treeResult {
	res := &treeResult{
		SExpr:       tree.SExpr(),
		Diagnostics: []diagnostic{},
		Reused:      tree.Reused,
		Statements:  len(tree.Root.Children),
	}
	if full {
		res.Tree = tree
	}
	for _, d := range tree.Diagnostics() {
		res.Diagnostics = append(res.Diagnostics, diagnostic{
			Kind:     d.Kind.String(),
			Category: d.Kind.Category().String(),
			Message:  d.Message,
			Start:    d.Span.Start.Offset,
			End:      d.Span.End.Offset,
			Line:     d.Span.Start.Line,
			Column:   d.Span.Start.Column,
		})
	}
	return res
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSourceSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSourceSize {
		return nil, fmt.Errorf("source exceeds %d bytes", maxSourceSize)
	}
	return data, nil
}

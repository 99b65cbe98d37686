package dbiface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dfki-ric/xdbi/internal/httpapi"
	"github.com/dfki-ric/xdbi/internal/xtype"
)

// Remote is the DbInterface variant that serializes every operation as a
// JSON envelope to an httpapi.Server over HTTP.
type Remote struct {
	httpClient *http.Client
	address    string
	readOnly   bool

	mu    sync.RWMutex
	graph string
}

// NewRemote returns a Remote interface targeting address (e.g.
// "http://localhost:8080"), trimming a trailing slash as the source does.
func NewRemote(address string, readOnly bool) *Remote {
	return &Remote{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		address:    strings.TrimSuffix(address, "/"),
		readOnly:   readOnly,
	}
}

func (c *Remote) SetWorkingGraph(graph string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.graph = graph
}

func (c *Remote) WorkingGraph() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.graph
}

func (c *Remote) ReadOnly() bool { return c.readOnly }

// AbsoluteDbPath returns the server address as the remote interface's
// canonical location.
func (c *Remote) AbsoluteDbPath() string { return c.address }

// IsReady pings the server and confirms a working graph is set.
func (c *Remote) IsReady() bool {
	if c.WorkingGraph() == "" {
		return false
	}
	_, err := c.ping(context.Background())
	return err == nil
}

func (c *Remote) ping(ctx context.Context) (int64, error) {
	now := time.Now().UnixMilli()
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestPing, Graph: c.WorkingGraph(), Time: now})
	if err != nil {
		return 0, err
	}
	delta, _ := resp.Result.(float64)
	return int64(delta), nil
}

func (c *Remote) Load(ctx context.Context, uri, classname string) (xtype.Document, error) {
	if !c.IsReady() {
		return nil, ErrNotReady
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestLoad, Graph: c.WorkingGraph(), URI: uri, Classname: classname})
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}
	m, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, nil
	}
	return xtype.Document(m), nil
}

func (c *Remote) Find(ctx context.Context, classname string, properties map[string]any) ([]xtype.Document, error) {
	if !c.IsReady() {
		return nil, ErrNotReady
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestFind, Graph: c.WorkingGraph(), Classname: classname, Properties: properties})
	if err != nil {
		return nil, err
	}
	return decodeDocuments(resp.Result), nil
}

func (c *Remote) URIs(ctx context.Context, classname string, properties map[string]any) ([]string, error) {
	docs, err := c.Find(ctx, classname, properties)
	if err != nil {
		return nil, err
	}
	return URIsFrom(docs), nil
}

func (c *Remote) Add(ctx context.Context, models []xtype.Document) (bool, error) {
	if !c.IsReady() {
		return false, ErrNotReady
	}
	if c.readOnly {
		return false, ErrReadOnly
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestAdd, Graph: c.WorkingGraph(), Models: models})
	if err != nil {
		return false, err
	}
	ok, _ := resp.Result.(bool)
	return ok, nil
}

func (c *Remote) Update(ctx context.Context, models []xtype.Document) (bool, error) {
	if !c.IsReady() {
		return false, ErrNotReady
	}
	if c.readOnly {
		return false, ErrReadOnly
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestUpdate, Graph: c.WorkingGraph(), Models: models})
	if err != nil {
		return false, err
	}
	ok, _ := resp.Result.(bool)
	return ok, nil
}

func (c *Remote) Remove(ctx context.Context, uri string) (bool, error) {
	if !c.IsReady() {
		return false, ErrNotReady
	}
	if c.readOnly {
		return false, ErrReadOnly
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestRemove, Graph: c.WorkingGraph(), URI: uri})
	if err != nil {
		return false, err
	}
	ok, _ := resp.Result.(bool)
	return ok, nil
}

func (c *Remote) Clear(ctx context.Context) (bool, error) {
	if !c.IsReady() {
		return false, ErrNotReady
	}
	if c.readOnly {
		return false, ErrReadOnly
	}
	resp, err := c.call(ctx, httpapi.Request{Type: httpapi.RequestClear, Graph: c.WorkingGraph()})
	if err != nil {
		return false, err
	}
	ok, _ := resp.Result.(bool)
	return ok, nil
}

func (c *Remote) call(ctx context.Context, req httpapi.Request) (httpapi.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return httpapi.Response{}, fmt.Errorf("dbiface: remote: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address+"/", bytes.NewReader(body))
	if err != nil {
		return httpapi.Response{}, fmt.Errorf("dbiface: remote: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return httpapi.Response{}, fmt.Errorf("dbiface: remote: no response from server, is it running? %w", err)
	}
	defer httpResp.Body.Close()

	var resp httpapi.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return httpapi.Response{}, fmt.Errorf("dbiface: remote: could not parse response: %w", err)
	}
	if resp.Status == httpapi.StatusError {
		return httpapi.Response{}, fmt.Errorf("dbiface: remote: %s", resp.Message)
	}
	return resp, nil
}

func decodeDocuments(result any) []xtype.Document {
	arr, ok := result.([]any)
	if !ok {
		return []xtype.Document{}
	}
	out := make([]xtype.Document, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, xtype.Document(m))
		}
	}
	return out
}

var _ DbInterface = (*Remote)(nil)

// Package httpapi is the HTTP adapter: a single-endpoint JSON protocol
// translating load/find/add/update/remove/clear/ping requests into
// storage-engine calls and back into a uniform status/result envelope.
// It is treated as an external collaborator around the storage engine,
// not part of the engine's own contract.
package httpapi

import "github.com/dfki-ric/xdbi/internal/xtype"

// RequestType enumerates the single endpoint's request kinds.
type RequestType string

const (
	RequestLoad   RequestType = "load"
	RequestFind   RequestType = "find"
	RequestAdd    RequestType = "add"
	RequestUpdate RequestType = "update"
	RequestRemove RequestType = "remove"
	RequestClear  RequestType = "clear"
	RequestPing   RequestType = "ping"
)

// Request is the wire envelope sent to the single endpoint. Fields not
// relevant to Type are left zero.
type Request struct {
	Type       RequestType      `json:"type"`
	Graph      string           `json:"graph"`
	URI        string           `json:"uri,omitempty"`
	Classname  string           `json:"classname,omitempty"`
	Properties map[string]any   `json:"properties,omitempty"`
	Models     []xtype.Document `json:"models,omitempty"`
	Time       int64            `json:"time,omitempty"`
}

// Response is the wire envelope returned by the single endpoint.
type Response struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	StatusFinished = "finished"
	StatusError    = "error"
)

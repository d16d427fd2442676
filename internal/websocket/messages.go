package websocket

import (
	"encoding/json"
	"strings"
)

// Frame types
const (
	TypeRange     = "range"
	TypeError     = "error"
	TypeHeartbeat = "heartbeat"
)

// RangeRequest is sent by the page whenever a date input changes.
// Type may be omitted; a bare {"start","end"} object is a range request.
type RangeRequest struct {
	Type  string `json:"type,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ErrorFrame reports a request the server could not answer
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func decodeRequest(data []byte) (RangeRequest, error) {
	var req RangeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Type == "" {
		req.Type = TypeRange
	}
	return req, nil
}

func errorFrame(msg string) []byte {
	data, _ := json.Marshal(ErrorFrame{Type: TypeError, Error: msg})
	return data
}

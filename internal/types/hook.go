package types

import (
	"encoding/json"
	"io"
)

// DefaultSessionID is used when an event carries no session id.
const DefaultSessionID = "default"

// HookEvent is the normalized form of the JSON object a hook reads from
// stdin. Inbound payloads are untyped and inconsistently named across event
// variants; decoding tolerates every shape, defaults missing fields, and
// rejects nothing except syntactically invalid JSON.
type HookEvent struct {
	SessionID      string    `json:"session_id"`
	TranscriptPath string    `json:"transcript_path"`
	ToolName       string    `json:"tool_name"`
	Prompt         string    `json:"prompt"`
	ToolInput      ToolInput `json:"tool_input"`
}

// ToolInput carries the fields of tool_input the hooks consume.
type ToolInput struct {
	FilePath string   `json:"file_path"`
	Todos    []Signal `json:"todos"`
}

// Signal is one self-reported todo entry: free text plus a status.
type Signal struct {
	Content string
	Status  Status
}

// UnmarshalJSON accepts both "content" and "task" for the text field and
// normalizes the status ("done" and friends map to completed, unknown values
// to pending).
func (s *Signal) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content string `json:"content"`
		Task    string `json:"task"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Content = raw.Content
	if s.Content == "" {
		s.Content = raw.Task
	}
	s.Status = NormalizeStatus(raw.Status)
	return nil
}

// DecodeHookEvent reads one event object from r. The only error it returns
// is malformed JSON; callers treat that as "allow and exit".
func DecodeHookEvent(r io.Reader) (*HookEvent, error) {
	var ev HookEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, err
	}
	if ev.SessionID == "" {
		ev.SessionID = DefaultSessionID
	}
	return &ev, nil
}

// HookResponse is the single JSON object every hook writes to stdout.
// Continue=false is the only mechanism that blocks the agent from stopping.
type HookResponse struct {
	Continue      bool   `json:"continue"`
	SystemMessage string `json:"systemMessage,omitempty"`
}

// Allow builds an allowing response with an optional informational message.
func Allow(msg string) HookResponse {
	return HookResponse{Continue: true, SystemMessage: msg}
}

// Block builds a blocking response.
func Block(msg string) HookResponse {
	return HookResponse{Continue: false, SystemMessage: msg}
}

// Write emits the response as one JSON object.
func (r HookResponse) Write(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

package rpc

import (
	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/fault"
)

const (
	ObjectResult = "result"
	ObjectError  = "error"
)

// Response is the tagged body of every RPC reply.
type Response struct {
	Object    string            `json:"object"`
	Success   *bool             `json:"success,omitempty"`
	Available *bool             `json:"available,omitempty"`
	Message   string            `json:"message,omitempty"`
	ID        string            `json:"id,omitempty"`
	Card      *account.CardInfo `json:"card,omitempty"`
	Prices    map[string]any    `json:"prices,omitempty"`
	Fault     fault.Kind        `json:"fault,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func result() Response { return Response{Object: ObjectResult} }

func errorObject(msg string) Response {
	return Response{Object: ObjectError, Message: msg}
}

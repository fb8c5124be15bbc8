package httpapi

import "github.com/chunger/cfdb/graph"

type Status string

const (
	StatusOK      Status = "OK"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response is the body of every API reply.
type Response struct {
	Status Status        `json:"status,omitempty"`
	Error  string        `json:"error,omitempty"`
	Value  string        `json:"value,omitempty"`
	Node   *graph.Node   `json:"node,omitempty"`
	Nodes  []*graph.Node `json:"nodes,omitempty"`
	Edge   *graph.Edge   `json:"edge,omitempty"`
	Edges  []*graph.Edge `json:"edges,omitempty"`
}

func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

func NewSuccessResponse() Response {
	return Response{Status: StatusSuccess}
}

func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}

// ABOUTME: JSON-RPC message types for the realtime sync server protocol
// ABOUTME: Requests carry string IDs; listener notifications reuse the subscription ID
package realtime

import "encoding/json"

// RPCError is a server-side failure for one request.
type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// RPCRequest is one client call.
type RPCRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

// RPCResponse answers a request by ID. The server also uses responses with a
// live subscription's ID to deliver change notifications.
type RPCResponse struct {
	ID     string          `json:"id"`
	Error  *RPCError       `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// listenResult is the payload answering a listen call: the new subscription
// ID plus the current value at the path.
type listenResult struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

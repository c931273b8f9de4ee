package jsonrpc

import (
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// jsonCodec is the marshaler used on the request handling paths
var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is a jsonrpc request
type Request struct {
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// BatchRequest is a batch of jsonrpc requests
type BatchRequest []Request

// Response is a jsonrpc response interface
type Response interface {
	// GetID returns the id of the response
	GetID() interface{}

	// Data returns the result (or the error object) of the response
	Data() json.RawMessage

	// Bytes returns the serialized response
	Bytes() ([]byte, error)
}

// ErrorResponse is a jsonrpc error response
type ErrorResponse struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      interface{}  `json:"id,omitempty"`
	Error   *ObjectError `json:"error"`
}

// GetID returns error response id
func (e *ErrorResponse) GetID() interface{} {
	return e.ID
}

// Data returns the serialized error object
func (e *ErrorResponse) Data() json.RawMessage {
	data, err := jsonCodec.Marshal(e.Error)
	if err != nil {
		return json.RawMessage(err.Error())
	}

	return data
}

// Bytes return the serialized response
func (e *ErrorResponse) Bytes() ([]byte, error) {
	return jsonCodec.Marshal(e)
}

// SuccessResponse is a jsonrpc success response
type SuccessResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *ObjectError    `json:"error,omitempty"`
}

// GetID returns success response id
func (s *SuccessResponse) GetID() interface{} {
	return s.ID
}

// Data returns the result
func (s *SuccessResponse) Data() json.RawMessage {
	return s.Result
}

// Bytes return the serialized response
func (s *SuccessResponse) Bytes() ([]byte, error) {
	return jsonCodec.Marshal(s)
}

// ObjectError is a jsonrpc error
type ObjectError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements error interface
func (e *ObjectError) Error() string {
	data, err := jsonCodec.Marshal(e)
	if err != nil {
		return fmt.Sprintf("jsonrpc.internal marshal error: %v", err)
	}

	return string(data)
}

// NewRPCResponse returns Success/Error response object
func NewRPCResponse(id interface{}, jsonRPCVersion string, reply []byte, err Error) Response {
	switch err.(type) {
	case nil:
		return NewRPCSuccessResponse(id, reply, jsonRPCVersion)
	default:
		return NewRPCErrorResponse(id, err.ErrorCode(), err.Error(), reply, jsonRPCVersion)
	}
}

// NewRPCErrorResponse is used to create a custom error response
func NewRPCErrorResponse(id interface{}, errCode int, err string, data []byte, jsonRPCVersion string) Response {
	errObject := &ObjectError{Code: errCode, Message: err}
	if len(data) > 0 {
		errObject.Data = data
	}

	return &ErrorResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error:   errObject,
	}
}

// NewRPCSuccessResponse returns a success response object. A nil reply
// renders as an explicit null result so that clients can distinguish a
// missing record from a transport failure.
func NewRPCSuccessResponse(id interface{}, reply []byte, jsonRPCVersion string) Response {
	result := json.RawMessage("null")
	if reply != nil {
		result = reply
	}

	return &SuccessResponse{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  result,
	}
}

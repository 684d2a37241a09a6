package models

// Response is the envelope shared by every success and error body.
// Data and DataList are omitted when nil.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	DataList   any    `json:"dataList,omitempty"`
}

// NewResponse builds an envelope without payload.
func NewResponse(status int, message string) Response {
	return Response{StatusCode: status, Message: message}
}

// SingleResponse builds an envelope carrying one object.
func SingleResponse(status int, message string, data any) Response {
	return Response{StatusCode: status, Message: message, Data: data}
}

// ListResponse builds an envelope carrying a list. A nil slice is still
// serialized as an empty array.
func ListResponse[T any](status int, message string, list []T) Response {
	if list == nil {
		list = []T{}
	}
	return Response{StatusCode: status, Message: message, DataList: list}
}

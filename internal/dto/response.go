package dto

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// DataResponse wraps a successful payload.
type DataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// SuccessResponse acknowledges a mutation that returns no payload.
type SuccessResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

// ErrorResponse carries a machine-readable code and a human message.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Msg    string `json:"msg"`
}

func OK(data interface{}) DataResponse {
	return DataResponse{Status: StatusOK, Data: data}
}

func Success(msg string) SuccessResponse {
	return SuccessResponse{Status: StatusOK, Msg: msg}
}

func Fail(code, msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: code, Msg: msg}
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

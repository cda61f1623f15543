package dto

// Info carries the human-readable outcome message of a response.
type Info struct {
	Message string `json:"message"`
}

// Envelope is the uniform response body: payload under data, message under
// info. Errors keep the same shape with an empty data object.
type Envelope struct {
	Data interface{} `json:"data"`
	Info Info        `json:"info"`
}

func Success(data interface{}, message string) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Data: data, Info: Info{Message: message}}
}

func Failure(message string) Envelope {
	return Envelope{Data: struct{}{}, Info: Info{Message: message}}
}

package utils

import (
	"io"

	"github.com/goccy/go-json"
)

func MarshalJSON(val any) ([]byte, error) {
	return json.Marshal(val)
}

func UnmarshalJSON(data []byte, val any) error {
	return json.Unmarshal(data, val)
}

func NewJSONEncoder(writer io.Writer) *json.Encoder {
	return json.NewEncoder(writer)
}

func NewJSONDecoder(reader io.Reader) *json.Decoder {
	return json.NewDecoder(reader)
}

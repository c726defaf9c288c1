package passrpc

import (
	"encoding/json"
)

// CodecName is the content subtype the codec is negotiated under
const CodecName = "json"

// Codec marshals passrpc messages as JSON for grpc.ForceServerCodec and grpc.ForceCodec
type Codec struct{}

// Marshal encodes v
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v
func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Name returns the codec name
func (Codec) Name() string {
	return CodecName
}

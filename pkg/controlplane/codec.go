package controlplane

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is the wire codec every controlplane client and server must negotiate;
// set as the gRPC call's content-subtype so neither side ever falls back to the
// default (protobuf) codec, which none of this package's message types implement.
const codecName = "vector-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals controlplane request/response structs as JSON instead of
// protobuf wire format, so the service can be built against plain Go types without
// protoc-generated code (see doc.go).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("controlplane: marshal %T: %w", v, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("controlplane: unmarshal %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

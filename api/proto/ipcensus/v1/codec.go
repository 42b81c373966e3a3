package ipcensusv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as a grpc content-subtype: without a protoc
// toolchain to generate protobuf marshaling for the messages in
// service.go, the client selects this JSON codec per call with
// grpc.CallContentSubtype, and the server picks the same registered codec
// from the request's content-subtype.
const codecName = "ipcensusjson"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

package grpctransport

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// codecName identifies this codec on the wire via the grpc content-subtype
// mechanism (the "+gob" suffix on the content-type header). No protoc
// toolchain is available in this module, so there are no generated
// .pb.go message types to pair with the usual "proto" codec; gob fills
// that role instead, operating directly on the same named-field request/
// response structs the HTTP+JSON transport uses (internal/boundary/wire),
// per spec.md §9's warning against positional wire formats.
const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(gobCodec{})
}

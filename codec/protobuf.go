package codec

import "google.golang.org/protobuf/proto"

// Protobuf is a Codec for proto.Message values. Decode needs a fresh concrete
// message per call, so the codec carries a constructor:
//
//	codec.NewProtobuf(func() *pb.Product { return &pb.Product{} })
type Protobuf[T proto.Message] struct {
	new func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

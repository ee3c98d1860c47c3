package codec

import (
	"go.uber.org/fx"

	sr "github.com/Aleph-Alpha/kafka-roundtrip/v1/schema_registry"
)

// FXModule provides a *Codec backed by the injected schema registry.
var FXModule = fx.Module("codec",
	fx.Provide(NewCodecWithDI),
)

// CodecParams groups the dependencies of NewCodecWithDI.
type CodecParams struct {
	fx.In

	Registry sr.Registry `optional:"true"`
}

// NewCodecWithDI builds the codec from injected dependencies.
func NewCodecWithDI(params CodecParams) *Codec {
	return NewCodec(params.Registry)
}

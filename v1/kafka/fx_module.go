package kafka

import (
	"go.uber.org/fx"
)

// FXModule provides the kafka *Factory. Clients created from it are owned
// by their callers, which close them.
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    fx.Provide(func() kafka.Config {
//	        return kafka.Config{Brokers: []string{"localhost:9092"}}
//	    }),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(NewFactoryWithDI),
)

// KafkaParams groups the dependencies needed to create the factory.
type KafkaParams struct {
	fx.In

	Config Config
	Logger Logger `optional:"true"`
}

// NewFactoryWithDI creates the factory from injected dependencies.
func NewFactoryWithDI(params KafkaParams) (*Factory, error) {
	return NewFactory(params.Config, params.Logger)
}

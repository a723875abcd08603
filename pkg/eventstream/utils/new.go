// Package eventstreamutils builds answer event publishers by name.
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/eventstream"
	"github.com/papercomputeco/coursewise/pkg/eventstream/kafka"
	"github.com/papercomputeco/coursewise/pkg/eventstream/nop"
)

// Supported publishers.
const (
	ProviderNone  = "none"
	ProviderKafka = "kafka"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
	Logger       *zap.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	switch o.ProviderType {
	case ProviderNone, "":
		return nop.NewPublisher(), nil
	case ProviderKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", o.ProviderType)
	}
}

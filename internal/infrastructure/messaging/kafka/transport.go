package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

const dialTimeout = 10 * time.Second

type mechanismFactory func(user, pass string) (sasl.Mechanism, error)

func scramWith(algo scram.Algorithm) mechanismFactory {
	return func(user, pass string) (sasl.Mechanism, error) {
		return scram.Mechanism(algo, user, pass)
	}
}

var mechanisms = map[string]mechanismFactory{
	"PLAIN": func(user, pass string) (sasl.Mechanism, error) {
		return plain.Mechanism{Username: user, Password: pass}, nil
	},
	"SCRAM-SHA-256": scramWith(scram.SHA256),
	"SCRAM-SHA-512": scramWith(scram.SHA512),
}

// saslMechanism returns nil when SASL is disabled.
func saslMechanism(cfg config.KafkaConfig) (sasl.Mechanism, error) {
	if cfg.SASLMechanism == "" {
		return nil, nil
	}
	build, ok := mechanisms[cfg.SASLMechanism]
	if !ok {
		return nil, errors.New(errors.ErrCodeValidation, "unsupported SASL mechanism").
			WithDetail("mechanism=" + cfg.SASLMechanism)
	}
	m, err := build(cfg.SASLUsername, cfg.SASLPassword)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMessageQueueError, "failed to create SASL mechanism")
	}
	return m, nil
}

// newTransport is the writer side of the connection settings.
func newTransport(cfg config.KafkaConfig) (*kafka.Transport, error) {
	mech, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Transport{ClientID: cfg.ClientID, DialTimeout: dialTimeout, SASL: mech}, nil
}

// newDialer is the reader side of the connection settings.
func newDialer(cfg config.KafkaConfig) (*kafka.Dialer, error) {
	mech, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Dialer{ClientID: cfg.ClientID, Timeout: dialTimeout, DualStack: true, SASLMechanism: mech}, nil
}

func validateConfig(cfg config.KafkaConfig) error {
	switch {
	case len(cfg.Brokers) == 0:
		return errors.New(errors.ErrCodeValidation, "kafka brokers required")
	case cfg.MaxRetries < 0:
		return errors.New(errors.ErrCodeValidation, "kafka max retries must be >= 0")
	case cfg.SASLMechanism != "" && (cfg.SASLUsername == "" || cfg.SASLPassword == ""):
		return errors.New(errors.ErrCodeValidation, "SASL credentials required")
	}
	return nil
}

//Personal.AI order the ending

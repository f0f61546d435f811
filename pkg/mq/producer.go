package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyBrokers       = errors.New("empty brokers")
	ErrEmptyTopics        = errors.New("empty topics")
	ErrEmptyTopicName     = errors.New("empty topic name")
	ErrUnsupportedPayload = errors.New("unsupported payload")
)

type Message struct {
	Payload Payload     `json:"payload,omitempty"`
	Key     string      `json:"key,omitempty"`
	Body    interface{} `json:"body,omitempty"`
}

func (msg *Message) ParseBody(dst interface{}) error {
	b, err := json.Marshal(msg.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// MessageSender is the producer capability task handlers depend on.
type MessageSender interface {
	SendMessage(msg *Message) error
	SendMessageAfter(msg *Message, delay time.Duration) error
}

type Producer struct {
	saramaProducer sarama.AsyncProducer
	topics         map[uint32]string
}

type ProducerConfig struct {
	Brokers []string          `json:"brokers,omitempty"`
	Topics  map[uint32]string `json:"topics,omitempty"`
}

func (c *ProducerConfig) validate() error {
	if len(c.Brokers) == 0 {
		return ErrEmptyBrokers
	}

	if len(c.Topics) == 0 {
		return ErrEmptyTopics
	}

	for payload, topic := range c.Topics {
		if topic == "" {
			return ErrEmptyTopicName
		}

		if _, ok := Payloads[Payload(payload)]; !ok {
			return ErrUnsupportedPayload
		}
	}

	return nil
}

func NewProducer(ctx context.Context, cfg ProducerConfig) (*Producer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Flush.Frequency = 500 * time.Millisecond
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, err
	}

	go func() {
		for err := range producer.Errors() {
			log.Ctx(ctx).Error().Msgf("sarama produce error, topic: %s, value: %v, err: %v",
				err.Msg.Topic, err.Msg.Value, err.Err.Error())
		}
	}()

	return &Producer{
		saramaProducer: producer,
		topics:         cfg.Topics,
	}, nil
}

func (p *Producer) Close() error {
	return p.saramaProducer.Close()
}

func (p *Producer) SendMessage(msg *Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	saramaMsg := &sarama.ProducerMessage{
		Topic: p.topics[uint32(msg.Payload)],
		Key:   sarama.StringEncoder(msg.Key),
		Value: sarama.ByteEncoder(b),
	}
	p.saramaProducer.Input() <- saramaMsg

	return nil
}

// SendMessageAfter produces msg after the given delay. The message is
// serialized up front so a later mutation of msg has no effect.
//
// The delay is held in-process only: a restart before it fires drops
// the message. A dropped pause recheck or automation delay stays
// dropped until the campaign is re-run or the automation re-triggers;
// durable delayed delivery would need a delay topic or a scheduler
// table.
func (p *Producer) SendMessageAfter(msg *Message, delay time.Duration) error {
	if delay <= 0 {
		return p.SendMessage(msg)
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var (
		topic = p.topics[uint32(msg.Payload)]
		key   = msg.Key
	)
	time.AfterFunc(delay, func() {
		p.saramaProducer.Input() <- &sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(key),
			Value: sarama.ByteEncoder(b),
		}
	})

	return nil
}

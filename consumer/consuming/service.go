package consuming

import (
	"github.com/IBM/sarama"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

type Service interface {
	Save(record vehicle.Record) error
}

type service struct {
	kafkaProducer sarama.AsyncProducer
	topic         string
}

func NewService(kafkaProducer sarama.AsyncProducer, topic string) Service {
	return &service{
		kafkaProducer: kafkaProducer,
		topic:         topic,
	}
}

// Save validates record and publishes it keyed by its id, so updates to the
// same vehicle stay on one partition.
func (c *service) Save(record vehicle.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	bytes, err := vehicle.Marshal(record)
	if err != nil {
		return err
	}

	c.kafkaProducer.Input() <- &sarama.ProducerMessage{
		Topic: c.topic,
		Key:   sarama.StringEncoder(record.ID),
		Value: sarama.ByteEncoder(bytes),
	}
	return nil
}

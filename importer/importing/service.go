package importing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/ch-go"
	chproto "github.com/ClickHouse/ch-go/proto"
	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

const createTableQuery = `
CREATE TABLE IF NOT EXISTS vehicles
(
	id          String,
	make        LowCardinality(String),
	year        UInt16,
	city_mpg    Float64,
	highway_mpg Float64,
	hybrid      Bool
)
ENGINE = ReplacingMergeTree
ORDER BY id
`

type Service interface {
	Start(ctx context.Context, wg *sync.WaitGroup) error
}

type service struct {
	kafka         sarama.ConsumerGroup
	topics        []string
	session       sarama.ConsumerGroupSession
	db            *ch.Client
	flushInterval time.Duration
	logger        *zap.SugaredLogger

	mx    sync.Mutex
	queue []*sarama.ConsumerMessage
}

func NewService(
	kafka sarama.ConsumerGroup,
	topic string,
	db *ch.Client,
	flushInterval time.Duration,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		kafka:         kafka,
		topics:        []string{topic},
		db:            db,
		flushInterval: flushInterval,
		logger:        logger,
	}
}

// Start creates the vehicles table when it is missing, then consumes and
// flushes in the background until ctx is done.
func (s *service) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := s.db.Do(ctx, ch.Query{Body: createTableQuery}); err != nil {
		return fmt.Errorf("failed to create vehicles table: %s", err)
	}
	go s.loopConsume(ctx, wg)
	go s.loopFlushing(ctx)
	return nil
}

func (s *service) loopConsume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		// `Consume` should be called inside an infinite loop, when a
		// server-side rebalance happens, the consumer session will need to be
		// recreated to get the new claims
		if err := s.kafka.Consume(ctx, s.topics, s); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			s.logger.Panicf("Error from consumer: %v", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *service) Setup(session sarama.ConsumerGroupSession) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.session = session
	return nil
}

func (s *service) Cleanup(_ sarama.ConsumerGroupSession) error {
	s.flush()
	return nil
}

func (s *service) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				s.logger.Info("message channel was closed")
				return nil
			}
			s.logger.Debugw("message claimed", "timestamp", message.Timestamp, "topic", message.Topic)
			s.enqueueMessage(message)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (s *service) enqueueMessage(msg *sarama.ConsumerMessage) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.queue = append(s.queue, msg)
}

func (s *service) loopFlushing(ctx context.Context) {
	t := time.NewTicker(s.flushInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.flush()
		}
	}
}

func (s *service) flush() {
	s.mx.Lock()
	defer s.mx.Unlock()
	if len(s.queue) == 0 {
		return
	}
	s.logger.Infof("Flushing %d messages", len(s.queue))
	records := decodeMessages(s.queue, s.logger)
	if len(records) > 0 {
		if err := s.saveVehicles(records); err != nil {
			// Messages stay queued and unmarked; the next tick retries them.
			s.logger.Errorw("failed to flush vehicles", "error", err)
			return
		}
	}
	for _, message := range s.queue {
		s.session.MarkMessage(message, "")
	}
	s.queue = s.queue[:0]
}

// decodeMessages drops messages that do not hold a valid vehicle record.
func decodeMessages(messages []*sarama.ConsumerMessage, logger *zap.SugaredLogger) []vehicle.Record {
	records := make([]vehicle.Record, 0, len(messages))
	for _, message := range messages {
		r, err := vehicle.Unmarshal(message.Value)
		if err != nil {
			logger.Warnw("dropping vehicle message",
				"partition", message.Partition,
				"offset", message.Offset,
				"error", err,
			)
			continue
		}
		records = append(records, r)
	}
	return records
}

func vehicleInput(records []vehicle.Record) chproto.Input {
	var (
		id           chproto.ColStr
		manufacturer = new(chproto.ColStr).LowCardinality()
		year         chproto.ColUInt16
		cityMpg      chproto.ColFloat64
		highwayMpg   chproto.ColFloat64
		hybrid       chproto.ColBool
	)

	for _, r := range records {
		id.Append(r.ID)
		manufacturer.Append(r.Make)
		year.Append(uint16(r.Year))
		cityMpg.Append(r.CityMpg)
		highwayMpg.Append(r.HighwayMpg)
		hybrid.Append(r.IsHybrid)
	}

	return chproto.Input{
		{Name: "id", Data: &id},
		{Name: "make", Data: manufacturer},
		{Name: "year", Data: &year},
		{Name: "city_mpg", Data: &cityMpg},
		{Name: "highway_mpg", Data: &highwayMpg},
		{Name: "hybrid", Data: &hybrid},
	}
}

func (s *service) saveVehicles(records []vehicle.Record) error {
	input := vehicleInput(records)
	q := ch.Query{
		Body:  input.Into("vehicles"),
		Input: input,
	}
	if err := s.db.Do(context.Background(), q); err != nil {
		return fmt.Errorf("failed to save vehicles in the DB: %s", err)
	}
	return nil
}

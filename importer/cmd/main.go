package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/importer/importing"
)

func newKafkaConsumerGroup(logger *zap.SugaredLogger, host string, port int, group string) sarama.ConsumerGroup {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Infof("Connecting to Kafka at %s", addr)
	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	kafkaConsumerGroup, err := sarama.NewConsumerGroup([]string{addr}, group, config)
	if err != nil {
		logger.Fatalf("Error creating consumer group client: %v", err)
	}
	return kafkaConsumerGroup
}

func newClickhouseClient(logger *zap.SugaredLogger, host string, port int) *ch.Client {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Infof("Connecting to Clickhouse at %s", addr)
	ctx := context.Background()
	c, err := ch.Dial(ctx, ch.Options{
		Address:  addr,
		Database: "fe",
	})
	if err != nil {
		logger.Fatalf("Failed to connect to Clickhouse DB: %s", err)
	}
	if err := c.Ping(ctx); err != nil {
		var exception *clickhouse.Exception
		if errors.As(err, &exception) {
			logger.Errorf("Exception [%d] %s \n%s", exception.Code, exception.Message, exception.StackTrace)
		}
		logger.Fatalf("Failed to ping Clickhouse DB: %s", err)
	}
	return c
}

func onInterrupt(logger *zap.SugaredLogger, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	go func() {
		for s := range signals {
			logger.Infof("Received %s", s)
			cancel()
		}
	}()
}

type options struct {
	kafka struct {
		host  string
		port  int
		topic string
		group string
	}
	clickhouse struct {
		host string
		port int
	}
	flush struct {
		interval time.Duration
	}
}

func main() {
	var opts options
	flag.StringVar(&opts.kafka.host, "kafka.host", "localhost", "Kafka host")
	flag.IntVar(&opts.kafka.port, "kafka.port", 9092, "Kafka port")
	flag.StringVar(&opts.kafka.topic, "kafka.topic", "vehicles", "Kafka topic to import vehicle records from")
	flag.StringVar(&opts.kafka.group, "kafka.group", "importer", "Kafka consumer group")
	flag.StringVar(&opts.clickhouse.host, "clickhouse.host", "localhost", "Clickhouse host")
	flag.IntVar(&opts.clickhouse.port, "clickhouse.port", 9000, "Clickhouse port")
	flag.DurationVar(&opts.flush.interval, "flush.interval", time.Second, "How often queued records are written to Clickhouse")
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %s\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	if opts.flush.interval <= 0 {
		logger.Fatalf("flush.interval must be positive, got %s", opts.flush.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	onInterrupt(logger, cancel)

	kafkaConsumerGroup := newKafkaConsumerGroup(logger, opts.kafka.host, opts.kafka.port, opts.kafka.group)
	clickhouseClient := newClickhouseClient(logger, opts.clickhouse.host, opts.clickhouse.port)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	service := importing.NewService(kafkaConsumerGroup, opts.kafka.topic, clickhouseClient, opts.flush.interval, logger)
	if err := service.Start(ctx, wg); err != nil {
		logger.Fatal(err)
	}

	logger.Info("Ready")
	wg.Wait()
}

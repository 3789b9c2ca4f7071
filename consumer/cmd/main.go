package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/consumer/consuming"
	"github.com/anton-kapralov/fuel-economy-pulse/consumer/http/rest"
	"github.com/anton-kapralov/fuel-economy-pulse/consumer/ratelimit"
)

func newKafkaProducer(logger *zap.SugaredLogger, host string, port int) sarama.AsyncProducer {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Infof("Connecting to Kafka at %s", addr)
	config := sarama.NewConfig()
	config.Producer.Idempotent = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Net.MaxOpenRequests = 1
	kafkaProducer, err := sarama.NewAsyncProducer([]string{addr}, config)
	if err != nil {
		logger.Fatalf("Failed to create a Kafka producer: %s", err)
	}
	go func() {
		for err := range kafkaProducer.Errors() {
			logger.Errorw("failed to publish vehicle", "error", err)
		}
	}()
	return kafkaProducer
}

func newRedisClient(logger *zap.SugaredLogger, host string, port int) *redis.Client {
	if host == "" {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Infof("Rate limiting through Redis at %s", addr)
	return redis.NewClient(&redis.Options{Addr: addr})
}

type options struct {
	kafka struct {
		host  string
		port  int
		topic string
	}
	redis struct {
		host string
		port int
	}
	ratelimit struct {
		window time.Duration
		limit  int
	}
	http struct {
		addr string
	}
}

func main() {
	var opts options
	flag.StringVar(&opts.kafka.host, "kafka.host", "localhost", "Kafka host")
	flag.IntVar(&opts.kafka.port, "kafka.port", 9092, "Kafka port")
	flag.StringVar(&opts.kafka.topic, "kafka.topic", "vehicles", "Kafka topic vehicle records are published to")
	flag.StringVar(&opts.redis.host, "redis.host", "localhost", "Redis host, empty disables rate limiting")
	flag.IntVar(&opts.redis.port, "redis.port", 6379, "Redis port")
	flag.DurationVar(&opts.ratelimit.window, "ratelimit.window", time.Minute, "Rate limit window")
	flag.IntVar(&opts.ratelimit.limit, "ratelimit.limit", 120, "Requests allowed per client in one window")
	flag.StringVar(&opts.http.addr, "http.addr", ":8081", "HTTP listen address")
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %s\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	kafkaProducer := newKafkaProducer(logger, opts.kafka.host, opts.kafka.port)
	defer kafkaProducer.Close()
	consumer := consuming.NewService(kafkaProducer, opts.kafka.topic)
	restController := rest.NewController(consumer, logger)

	limiter := ratelimit.NewRateLimiter(
		newRedisClient(logger, opts.redis.host, opts.redis.port),
		opts.ratelimit.window,
		opts.ratelimit.limit,
	)

	router := gin.Default()
	router.POST("/api/vehicle", ratelimit.Middleware(limiter, logger), restController.SaveVehicleMessage)

	logger.Fatal(router.Run(opts.http.addr))
}

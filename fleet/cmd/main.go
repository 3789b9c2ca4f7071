package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/fleet/aggregating"
	"github.com/anton-kapralov/fuel-economy-pulse/fleet/http/rest"
	"github.com/anton-kapralov/fuel-economy-pulse/fleet/listing"
)

func newClickhouseConnection(logger *zap.SugaredLogger, host string, port int) driver.Conn {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Infof("Connecting to Clickhouse at %s", addr)
	ctx := context.Background()
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "fe",
		},
	})
	if err != nil {
		logger.Fatalf("Failed to connect to Clickhouse at %s: %s", addr, err)
	}
	if err := conn.Ping(ctx); err != nil {
		var exception *clickhouse.Exception
		if errors.As(err, &exception) {
			logger.Errorf("Exception [%d] %s \n%s", exception.Code, exception.Message, exception.StackTrace)
		}
		logger.Fatalf("Failed to ping Clickhouse DB: %s", err)
	}
	return conn
}

func newListingService(logger *zap.SugaredLogger, opts options) listing.Service {
	var svc listing.Service
	switch opts.source {
	case "static":
		static, err := listing.NewStaticService()
		if err != nil {
			logger.Fatalf("Failed to load static dataset: %s", err)
		}
		svc = static
	case "clickhouse":
		svc = listing.NewService(newClickhouseConnection(logger, opts.clickhouse.host, opts.clickhouse.port))
	default:
		logger.Fatalf("Unknown record source %q", opts.source)
	}

	if opts.memcache.host == "" {
		return svc
	}
	addr := fmt.Sprintf("%s:%d", opts.memcache.host, opts.memcache.port)
	logger.Infof("Caching records in memcache at %s", addr)
	return listing.NewCachedService(svc, opts.source, memcache.New(addr), opts.memcache.ttl, logger)
}

func printReport(listingService listing.Service) error {
	records, err := listingService.List(context.Background())
	if err != nil {
		return err
	}
	report, err := aggregating.NewService(records).Report()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type options struct {
	source     string
	clickhouse struct {
		host string
		port int
	}
	memcache struct {
		host string
		port int
		ttl  time.Duration
	}
	http struct {
		addr string
	}
	print bool
}

func main() {
	var opts options
	flag.StringVar(&opts.source, "source", "static", "Record source: static or clickhouse")
	flag.StringVar(&opts.clickhouse.host, "clickhouse.host", "localhost", "Clickhouse host")
	flag.IntVar(&opts.clickhouse.port, "clickhouse.port", 9000, "Clickhouse port")
	flag.StringVar(&opts.memcache.host, "memcache.host", "", "Memcache host, empty disables caching")
	flag.IntVar(&opts.memcache.port, "memcache.port", 11211, "Memcache port")
	flag.DurationVar(&opts.memcache.ttl, "memcache.ttl", time.Minute, "How long loaded records stay in memcache")
	flag.StringVar(&opts.http.addr, "http.addr", ":8082", "HTTP listen address")
	flag.BoolVar(&opts.print, "print", false, "Print the fleet report and exit")
	flag.Parse()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %s\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	listingService := newListingService(logger, opts)

	if opts.print {
		if err := printReport(listingService); err != nil {
			logger.Fatalf("Failed to build report: %s", err)
		}
		return
	}

	restController := rest.NewController(listingService, logger)

	router := gin.Default()
	rest.Register(router, restController)

	logger.Fatal(router.Run(opts.http.addr))
}

// Command edgequery runs a neighbor query over a JSON input file and writes
// the resulting edge list to a local file, S3 or MinIO.
//
// Usage:
//
//	edgequery -kernel segment -radius 0.5 -in input.json -out s3://bucket/run-1/edges.eql
//
// Settings not given as flags are read from EDGEQUERY_* environment
// variables, which may also come from a .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()
	if f := os.Getenv("EDGEQUERY_ENV_FILE"); f != "" {
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: load %s: %v\n", f, err)
			os.Exit(2)
		}
	}

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type settings struct {
	kernel      string
	in          string
	out         string
	radius      float64
	maxMatches  int
	workers     int
	seed        uint64
	seeded      bool
	compression string
	format      string
	memoryLimit int64
	ioLimit     int64
	logLevel    slog.Level

	catalogTable string
	awsRegion    string

	minioEndpoint  string
	minioAccessKey string
	minioSecretKey string
	minioSecure    bool
}

// envDefaults reads flag defaults from the environment and remembers the
// first malformed value.
type envDefaults struct {
	err error
}

func (e *envDefaults) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
}

func (e *envDefaults) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (e *envDefaults) integer(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envDefaults) float(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envDefaults) boolean(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func parseFlags(fs *flag.FlagSet, args []string) (settings, error) {
	var (
		cfg settings
		env envDefaults
	)

	fs.StringVar(&cfg.kernel, "kernel", env.str("EDGEQUERY_KERNEL", "segment"), "query kernel: segment or adjacency")
	fs.StringVar(&cfg.in, "in", env.str("EDGEQUERY_IN", "-"), "input JSON file (- for stdin)")
	fs.StringVar(&cfg.out, "out", env.str("EDGEQUERY_OUT", "-"), "output location: path, s3://bucket/key, minio://bucket/key or - for stdout")
	fs.Float64Var(&cfg.radius, "radius", env.float("EDGEQUERY_RADIUS", 0), "search radius (segment kernel)")
	fs.IntVar(&cfg.maxMatches, "max", int(env.integer("EDGEQUERY_MAX_MATCHES", 32)), "maximum matches per query")
	fs.IntVar(&cfg.workers, "workers", int(env.integer("EDGEQUERY_WORKERS", 1)), "query workers (ignored when batching)")
	seed := fs.String("seed", env.str("EDGEQUERY_SEED", ""), "sampling seed (random if empty)")
	fs.StringVar(&cfg.compression, "compression", env.str("EDGEQUERY_COMPRESSION", "zstd"), "binary compression: none, zstd or lz4")
	fs.StringVar(&cfg.format, "format", env.str("EDGEQUERY_FORMAT", "binary"), "output format: binary or json")
	fs.Int64Var(&cfg.memoryLimit, "memory-limit", env.integer("EDGEQUERY_MEMORY_LIMIT", 0), "edge list memory limit in bytes (0 = unlimited)")
	fs.Int64Var(&cfg.ioLimit, "io-limit", env.integer("EDGEQUERY_IO_LIMIT", 0), "output throughput limit in bytes/sec (0 = unlimited)")
	verbose := fs.Bool("v", env.boolean("EDGEQUERY_VERBOSE", false), "enable debug logging")

	fs.StringVar(&cfg.catalogTable, "catalog-table", env.str("EDGEQUERY_CATALOG_TABLE", ""), "DynamoDB table recording s3:// outputs")
	fs.StringVar(&cfg.awsRegion, "aws-region", env.str("EDGEQUERY_AWS_REGION", ""), "AWS region (default from the AWS config chain)")

	fs.StringVar(&cfg.minioEndpoint, "minio-endpoint", env.str("EDGEQUERY_MINIO_ENDPOINT", "localhost:9000"), "MinIO endpoint")
	fs.StringVar(&cfg.minioAccessKey, "minio-access-key", env.str("EDGEQUERY_MINIO_ACCESS_KEY", ""), "MinIO access key")
	fs.StringVar(&cfg.minioSecretKey, "minio-secret-key", env.str("EDGEQUERY_MINIO_SECRET_KEY", ""), "MinIO secret key")
	fs.BoolVar(&cfg.minioSecure, "minio-secure", env.boolean("EDGEQUERY_MINIO_SECURE", false), "use HTTPS for MinIO")

	if env.err != nil {
		return cfg, env.err
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *seed != "" {
		n, err := strconv.ParseUint(*seed, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid seed %q: %w", *seed, err)
		}
		cfg.seed, cfg.seeded = n, true
	}

	cfg.logLevel = slog.LevelWarn
	if *verbose {
		cfg.logLevel = slog.LevelDebug
	}

	switch cfg.kernel {
	case "segment", "adjacency":
	default:
		return cfg, fmt.Errorf("unknown kernel %q", cfg.kernel)
	}
	switch cfg.format {
	case "binary", "json":
	default:
		return cfg, fmt.Errorf("unknown format %q", cfg.format)
	}

	return cfg, nil
}

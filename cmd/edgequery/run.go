package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/edgequery"
	s3blob "github.com/hupe1980/edgequery/blobstore/s3"
	"github.com/hupe1980/edgequery/codec"
	"github.com/hupe1980/edgequery/internal/resource"
)

func run(ctx context.Context, cfg settings, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := edgequery.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	in, err := readInput(cfg.in, stdin)
	if err != nil {
		return err
	}

	compression, err := codec.ParseCompression(cfg.compression)
	if err != nil {
		return err
	}

	// Resolve the sink before the query so configuration errors fail fast.
	out, err := openSink(ctx, cfg, stdout)
	if err != nil {
		return err
	}

	eng := edgequery.New(
		edgequery.WithLogger(logger),
		edgequery.WithMemoryLimit(cfg.memoryLimit),
	)

	start := time.Now()
	edges, kernel, err := query(ctx, eng, cfg, in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch cfg.format {
	case "json":
		data, err := codec.Default.Marshal(edges)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	default:
		if err := edges.Encode(&buf, compression); err != nil {
			return err
		}
	}

	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: cfg.ioLimit})
	if err := out.write(ctx, buf.Bytes(), rc); err != nil {
		return err
	}

	if out.catalog != nil {
		format := compression.String()
		if cfg.format == "json" {
			format = "json"
		}
		entry, err := out.catalog.Publish(ctx, s3blob.Entry{
			Object:      out.loc.key,
			Kernel:      kernel,
			Edges:       edges.Len(),
			Compression: format,
		})
		if err != nil {
			return fmt.Errorf("publish %s: %w", out.loc, err)
		}
		logger.InfoContext(ctx, "edge list published", "location", out.loc.String(), "version", entry.Version)
	}

	logger.InfoContext(ctx, "edge list written",
		"kernel", kernel,
		"edges", edges.Len(),
		"bytes", buf.Len(),
		"duration", time.Since(start),
	)
	return nil
}

func query(ctx context.Context, eng *edgequery.Engine, cfg settings, in *input) (*edgequery.EdgeList, string, error) {
	opts := []edgequery.QueryOption{
		edgequery.WithMaxMatches(cfg.maxMatches),
		edgequery.WithWorkers(cfg.workers),
	}
	if in.BatchCandidates != nil || in.BatchQueries != nil {
		opts = append(opts, edgequery.WithBatches(in.BatchCandidates, in.BatchQueries))
	}
	if cfg.seeded {
		opts = append(opts, edgequery.WithSeed(cfg.seed))
	}

	switch cfg.kernel {
	case "adjacency":
		width := 0
		if len(in.Rows) > 0 {
			width = len(in.Rows[0])
		}
		rows, err := matrix(in.Rows, max(width, 1))
		if err != nil {
			return nil, "", fmt.Errorf("rows: %w", err)
		}
		edges, err := eng.AdjacencyGroupQuery(ctx, in.Nodes, rows, opts...)
		return edges, "adjacency_group", err
	default:
		dim := 1
		if len(in.Points) > 0 {
			dim = len(in.Points[0])
		} else if len(in.Segments) > 0 {
			dim = len(in.Segments[0]) / 2
		}
		points, err := matrix(in.Points, dim)
		if err != nil {
			return nil, "", fmt.Errorf("points: %w", err)
		}
		segments, err := matrix(in.Segments, 2*dim)
		if err != nil {
			return nil, "", fmt.Errorf("segments: %w", err)
		}
		edges, err := eng.SegmentRadiusQuery(ctx, points, segments, float32(cfg.radius), opts...)
		return edges, "segment_radius", err
	}
}

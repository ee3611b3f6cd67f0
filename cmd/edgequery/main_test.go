package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/edgequery"
	"github.com/hupe1980/edgequery/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareInput = `{
	"points": [[-1,-1],[-1,1],[1,1],[1,-1],[-1,-1],[-1,1],[1,1],[1,-1]],
	"segments": [[-0.5,-0.5,-0.5,0.5],[-0.5,0.5,0.5,0.5],[0.5,0.5,0.5,-0.5],[0.5,-0.5,-0.5,-0.5]],
	"batch_candidates": [0,0,0,0,1,1,1,1],
	"batch_queries": [0,0,1,1]
}`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func testSettings(t *testing.T, args ...string) settings {
	t.Helper()
	cfg, err := parseFlags(flag.NewFlagSet("edgequery", flag.ContinueOnError), args)
	require.NoError(t, err)
	return cfg
}

func TestParseFlags(t *testing.T) {
	t.Setenv("EDGEQUERY_MAX_MATCHES", "7")
	t.Setenv("EDGEQUERY_COMPRESSION", "lz4")

	cfg := testSettings(t, "-kernel", "adjacency", "-seed", "42", "-v")
	assert.Equal(t, "adjacency", cfg.kernel)
	assert.Equal(t, 7, cfg.maxMatches)
	assert.Equal(t, "lz4", cfg.compression)
	assert.True(t, cfg.seeded)
	assert.Equal(t, uint64(42), cfg.seed)
	assert.Equal(t, slog.LevelDebug, cfg.logLevel)

	cfg = testSettings(t, "-max", "3")
	assert.Equal(t, 3, cfg.maxMatches, "flags win over the environment")
	assert.False(t, cfg.seeded)

	for _, args := range [][]string{
		{"-kernel", "knn"},
		{"-format", "xml"},
		{"-seed", "abc"},
	} {
		_, err := parseFlags(flag.NewFlagSet("edgequery", flag.ContinueOnError), args)
		assert.Error(t, err, "%v", args)
	}
}

func TestParseFlagsEnvDefaults(t *testing.T) {
	t.Setenv("EDGEQUERY_IN", "points.json")
	t.Setenv("EDGEQUERY_OUT", "s3://bucket/edges.eql")
	t.Setenv("EDGEQUERY_RADIUS", "0.25")
	t.Setenv("EDGEQUERY_VERBOSE", "true")
	t.Setenv("EDGEQUERY_MINIO_SECURE", "1")

	cfg := testSettings(t)
	assert.Equal(t, "points.json", cfg.in)
	assert.Equal(t, "s3://bucket/edges.eql", cfg.out)
	assert.Equal(t, 0.25, cfg.radius)
	assert.Equal(t, slog.LevelDebug, cfg.logLevel)
	assert.True(t, cfg.minioSecure)

	cfg = testSettings(t, "-radius", "2", "-in", "other.json")
	assert.Equal(t, 2.0, cfg.radius)
	assert.Equal(t, "other.json", cfg.in)
}

func TestParseFlagsMalformedEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"EDGEQUERY_MAX_MATCHES", "seven"},
		{"EDGEQUERY_WORKERS", "1.5"},
		{"EDGEQUERY_RADIUS", "wide"},
		{"EDGEQUERY_IO_LIMIT", "1MB"},
		{"EDGEQUERY_MINIO_SECURE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := parseFlags(flag.NewFlagSet("edgequery", flag.ContinueOnError), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want location
		err  bool
	}{
		{in: "out/edges.eql", want: location{key: "out/edges.eql"}},
		{in: "s3://bucket/run-1/edges.eql", want: location{scheme: "s3", bucket: "bucket", key: "run-1/edges.eql"}},
		{in: "minio://b/e.eql", want: location{scheme: "minio", bucket: "b", key: "e.eql"}},
		{in: "gs://bucket/key", err: true},
		{in: "s3://bucket", err: true},
		{in: "s3://bucket/dir/", err: true},
	}

	for _, tt := range tests {
		got, err := parseLocation(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}
}

func TestRunSegmentBinary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "run", "edges.eql")
	cfg := testSettings(t, "-in", writeInput(t, squareInput), "-out", out, "-radius", "1", "-seed", "1")

	var stderr bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, nil, nil, &stderr))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	edges, err := edgequery.DecodeEdgeList(f)
	require.NoError(t, err)
	edges.Sort()
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2, 3, 3}, edges.Query)
	assert.Equal(t, []int{0, 1, 1, 2, 6, 7, 4, 7}, edges.Candidate)
}

func TestRunAdjacencyJSONToStdout(t *testing.T) {
	input := `{"nodes":[0,0,1,1,2,3],"rows":[[1,0,1,1]]}`
	cfg := testSettings(t, "-kernel", "adjacency", "-format", "json", "-io-limit", "1048576")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, bytes.NewBufferString(input), &stdout, &stderr))

	var edges edgequery.EdgeList
	require.NoError(t, codec.Default.Unmarshal(stdout.Bytes(), &edges))
	assert.Equal(t, []int{0, 1, 4, 5}, edges.Neighbors(0))
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	cfg := testSettings(t, "-in", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, run(ctx, cfg, nil, nil, &bytes.Buffer{}))

	cfg = testSettings(t, "-in", writeInput(t, "{not json"))
	assert.Error(t, run(ctx, cfg, nil, nil, &bytes.Buffer{}))

	cfg = testSettings(t, "-in", writeInput(t, squareInput), "-radius", "-1")
	err := run(ctx, cfg, nil, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, edgequery.ErrInvalidArgument)

	cfg = testSettings(t, "-in", writeInput(t, squareInput), "-compression", "brotli")
	assert.ErrorIs(t, run(ctx, cfg, nil, &bytes.Buffer{}, &bytes.Buffer{}), codec.ErrUnknownCompression)

	cfg = testSettings(t, "-in", writeInput(t, `{"nodes":[0,9],"rows":[[1,0]]}`), "-kernel", "adjacency")
	var nr *edgequery.ErrNodeIndexOutOfRange
	assert.ErrorAs(t, run(ctx, cfg, nil, &bytes.Buffer{}, &bytes.Buffer{}), &nr)
}

package loader

import (
	"time"

	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/protocol"
)

// Config holds the loader configuration.
type Config struct {
	// ProgressCallback is called during transfers to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Images serves data requests. Defaults to images.NewFileSource("")
	Images ImageSource

	// Sink receives validated EFS blobs (optional; without it blobs are dropped)
	Sink Sink

	// ChunkTimeout bounds the wait before each EFS chunk read
	ChunkTimeout time.Duration

	// MemoryChunkSize is the largest single read while pulling EFS data
	MemoryChunkSize int

	// ChunkAttempts is the number of times a whole EFS region read is tried
	ChunkAttempts int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Images:          images.NewFileSource(images.DefaultRoot),
		ChunkTimeout:    500 * time.Millisecond,
		MemoryChunkSize: protocol.MaxMemoryChunk,
		ChunkAttempts:   5,
	}
}

// Option is a functional option for configuring the Loader.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the loader operations.
//
// Example:
//
//	l := loader.New(port, loader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithImageSource sets where image data is read from.
//
// Example:
//
//	l := loader.New(port, loader.WithImageSource(images.NewFileSource("/vendor")))
func WithImageSource(src ImageSource) Option {
	return func(c *Config) {
		if src != nil {
			c.Images = src
		}
	}
}

// WithSink sets the destination of synced EFS blobs.
func WithSink(sink Sink) Option {
	return func(c *Config) {
		c.Sink = sink
	}
}

// WithChunkTimeout sets how long to wait for each EFS chunk.
func WithChunkTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ChunkTimeout = timeout
		}
	}
}

// WithMemoryChunkSize sets the largest single EFS read.
// Values outside 1..MaxMemoryChunk are ignored.
func WithMemoryChunkSize(size int) Option {
	return func(c *Config) {
		if size > 0 && size <= protocol.MaxMemoryChunk {
			c.MemoryChunkSize = size
		}
	}
}

// WithChunkAttempts sets how many times a whole EFS region read is tried.
func WithChunkAttempts(attempts int) Option {
	return func(c *Config) {
		if attempts > 0 {
			c.ChunkAttempts = attempts
		}
	}
}

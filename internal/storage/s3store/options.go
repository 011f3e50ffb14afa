package s3store

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// clientOptions holds optional configuration for the Client.
type clientOptions struct {
	logger   *slog.Logger
	retryer  aws.Retryer
	pageSize int32
}

// Option is a functional option for configuring the Client.
type Option func(*clientOptions)

// WithLogger configures the client with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithRetryer replaces the SDK's default retry behavior.
func WithRetryer(retryer aws.Retryer) Option {
	return func(opts *clientOptions) {
		opts.retryer = retryer
	}
}

// WithPageSize sets the number of keys requested per listing page.
// Values outside 1..1000 use the S3 maximum of 1000.
func WithPageSize(size int32) Option {
	return func(opts *clientOptions) {
		opts.pageSize = size
	}
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		pageSize: maxPageSize,
	}
}

func applyOptions(opts *clientOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
	if opts.pageSize <= 0 || opts.pageSize > maxPageSize {
		opts.pageSize = maxPageSize
	}
}

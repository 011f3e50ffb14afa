// Package auth exchanges an MFA one-time code for temporary session
// credentials through STS.
//
// The exchange is an explicit call made once per process, before the storage
// client is built. Prompting for the code is done separately by ReadCode.
package auth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// STS error codes that mean the code or the long-term keys were rejected.
const (
	MultiFactorAuthChallengeFailed = "MultiFactorAuthChallengeFailed"
	AccessDenied                   = "AccessDenied"
	InvalidClientTokenID           = "InvalidClientTokenId"
	SignatureDoesNotMatch          = "SignatureDoesNotMatch"
)

const defaultRegion = "us-east-1"

// STSAPI is the subset of the STS client used for the MFA exchange.
type STSAPI interface {
	GetSessionToken(ctx context.Context, params *sts.GetSessionTokenInput, optFns ...func(*sts.Options)) (*sts.GetSessionTokenOutput, error)
}

var _ STSAPI = (*sts.Client)(nil)

// Credentials are temporary session credentials returned by STS.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// String never includes secret material.
func (c Credentials) String() string {
	return fmt.Sprintf("session credentials for %s (expires %s)", c.AccessKeyID, c.Expiration.Format(time.RFC3339))
}

// Settings holds what is needed to reach STS with long-term keys.
type Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string

	// Endpoint overrides the STS endpoint; empty uses the SDK default
	Endpoint string

	// CABundlePath is an optional PEM bundle trusted for the endpoint
	CABundlePath string
}

// Option configures ExchangeMFA.
type Option func(*exchangeOptions)

type exchangeOptions struct {
	logger   *slog.Logger
	duration time.Duration
}

// WithLogger configures the exchange with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *exchangeOptions) {
		o.logger = logger
	}
}

// WithDuration requests a specific session lifetime. Zero leaves the STS
// default in place.
func WithDuration(d time.Duration) Option {
	return func(o *exchangeOptions) {
		o.duration = d
	}
}

// NewSTSClient builds an STS client authenticated with the long-term keys.
func NewSTSClient(ctx context.Context, settings Settings) (*sts.Client, error) {
	if settings.AccessKeyID == "" || settings.SecretAccessKey == "" {
		return nil, errors.NewError("sts client initialization", errors.ErrInvalidConfig).
			WithMessage("access key id and secret access key are required")
	}

	region := settings.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)),
	}
	if settings.CABundlePath != "" {
		pem, err := os.ReadFile(settings.CABundlePath)
		if err != nil {
			return nil, errors.NewError("sts client initialization", errors.ErrInvalidConfig).
				WithMessage(fmt.Sprintf("read CA bundle %q: %v", settings.CABundlePath, err))
		}
		loadOpts = append(loadOpts, config.WithCustomCABundle(bytes.NewReader(pem)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("sts client initialization", err)
	}

	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
		}
	}), nil
}

// ExchangeMFA trades serial and a one-time code for session credentials.
//
// A rejected code or rejected long-term keys yield an error matching
// errors.ErrMFAFailed.
func ExchangeMFA(ctx context.Context, api STSAPI, serial, code string, opts ...Option) (*Credentials, error) {
	options := &exchangeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	serial = strings.TrimSpace(serial)
	code = strings.TrimSpace(code)
	if serial == "" {
		return nil, errors.NewError("getSessionToken", errors.ErrInvalidConfig).
			WithMessage("mfa serial number cannot be empty")
	}
	if code == "" {
		return nil, errors.NewError("getSessionToken", errors.ErrInvalidInput).
			WithMessage("mfa code cannot be empty")
	}

	input := &sts.GetSessionTokenInput{
		SerialNumber: aws.String(serial),
		TokenCode:    aws.String(code),
	}
	if options.duration > 0 {
		input.DurationSeconds = aws.Int32(int32(options.duration / time.Second))
	}

	if options.logger != nil {
		options.logger.DebugContext(ctx, "requesting session token", "serial_number", serial)
	}

	output, err := api.GetSessionToken(ctx, input)
	if err != nil {
		return nil, errors.NewError("getSessionToken", mapSTSError(err))
	}
	if output == nil || output.Credentials == nil {
		return nil, errors.NewError("getSessionToken", errors.ErrMFAFailed).
			WithMessage("response carried no credentials")
	}

	creds := &Credentials{
		AccessKeyID:     aws.ToString(output.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(output.Credentials.SecretAccessKey),
		SessionToken:    aws.ToString(output.Credentials.SessionToken),
		Expiration:      aws.ToTime(output.Credentials.Expiration).UTC(),
	}

	if options.logger != nil {
		options.logger.InfoContext(ctx, "mfa session established",
			"access_key_id", creds.AccessKeyID,
			"expires", creds.Expiration)
	}

	return creds, nil
}

func mapSTSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case MultiFactorAuthChallengeFailed:
		return fmt.Errorf("%w: the code may be incorrect or expired: %w", errors.ErrMFAFailed, err)
	case AccessDenied, InvalidClientTokenID, SignatureDoesNotMatch:
		return fmt.Errorf("%w: %w", errors.ErrMFAFailed, err)
	default:
		return err
	}
}

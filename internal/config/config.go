// Package config loads the downloader's connection settings.
//
// The primary source is the two-column config.csv file. Any format viper
// understands (.yaml, .json, .toml) is accepted as well, and every key can be
// overridden with a WASABI_<KEY> environment variable.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/validator.v2"

	"github.com/S-Muro0526/wasabi/internal/auth"
	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
)

const (
	// DefaultPath is the configuration file read when none is given.
	DefaultPath = "config.csv"

	// EnvPrefix prefixes environment overrides, e.g. WASABI_BUCKET_NAME.
	EnvPrefix = "WASABI"

	// MFAPlaceholder is the example file's value for an unset serial number.
	MFAPlaceholder = "YOUR_MFA_SERIAL_NUMBER_ARN (optional)"

	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Config holds the settings needed to reach the bucket.
type Config struct {
	AccessKeyID     string `mapstructure:"aws_access_key_id" validate:"nonzero"`
	SecretAccessKey string `mapstructure:"aws_secret_access_key" validate:"nonzero"`
	EndpointURL     string `mapstructure:"endpoint_url" validate:"nonzero"`
	BucketName      string `mapstructure:"bucket_name" validate:"nonzero"`

	// MFASerialNumber enables the MFA session exchange when set
	MFASerialNumber string `mapstructure:"mfa_serial_number"`

	Region         string `mapstructure:"region"`
	STSEndpointURL string `mapstructure:"sts_endpoint_url"`

	// SSLVerifyPath is a PEM bundle trusted in addition to the system roots
	SSLVerifyPath string `mapstructure:"ssl_verify_path"`

	Backend        string `mapstructure:"backend" validate:"regexp=^(s3|minio)$"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
	DownloadDir    string `mapstructure:"download_dir" validate:"nonzero"`
}

// Load reads path, applies environment overrides and validates the result.
// An empty path reads DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetDefault("region", "us-east-1")
	v.SetDefault("backend", BackendS3)
	v.SetDefault("download_dir", "Download")
	v.SetDefault("force_path_style", false)
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range keys() {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.NewError("loadConfig", err)
		}
	}

	if err := read(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewError("loadConfig", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("decode %q: %v", path, err))
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewError("loadConfig", err).WithKey(path)
	}
	return &cfg, nil
}

func read(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewError("loadConfig", errors.ErrInvalidConfig).
				WithMessage(fmt.Sprintf("configuration file %q not found, create it from 'config.csv.example'", path))
		}
		return errors.NewError("loadConfig", errors.ErrInvalidConfig).WithMessage(err.Error())
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" || ext == "" {
		values, err := ReadCSV(path)
		if err != nil {
			return err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return errors.NewError("loadConfig", errors.ErrInvalidConfig).
				WithMessage(fmt.Sprintf("merge %q: %v", path, err))
		}
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.NewError("loadConfig", errors.ErrInvalidConfig).
			WithMessage(fmt.Sprintf("read %q: %v", path, err))
	}
	return nil
}

func (c *Config) normalize() {
	fields := []*string{
		&c.AccessKeyID, &c.SecretAccessKey, &c.EndpointURL, &c.BucketName,
		&c.MFASerialNumber, &c.Region, &c.STSEndpointURL, &c.SSLVerifyPath,
		&c.Backend, &c.DownloadDir,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	c.Backend = strings.ToLower(c.Backend)
	if c.MFASerialNumber == MFAPlaceholder {
		c.MFASerialNumber = ""
	}
}

// Validate checks required keys and allowed values. The returned error
// matches errors.ErrInvalidConfig and names every offending key.
func (c *Config) Validate() error {
	err := validator.Validate(c)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ErrorMap)
	if !ok {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	var missing, invalid []string
	t := reflect.TypeOf(*c)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		ferr, ok := errs[field.Name]
		if !ok {
			continue
		}
		key := field.Tag.Get("mapstructure")
		if isZeroErr(ferr) {
			missing = append(missing, key)
		} else {
			invalid = append(invalid, fmt.Sprintf("%s (%q)", key, reflect.ValueOf(*c).Field(i).Interface()))
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing or empty required keys: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(parts, "; "))
}

func isZeroErr(errs validator.ErrorArray) bool {
	for _, e := range errs {
		if e.Error() == validator.ErrZeroValue.Error() {
			return true
		}
	}
	return false
}

// HasMFA reports whether the MFA session exchange is configured.
func (c *Config) HasMFA() bool {
	return c.MFASerialNumber != ""
}

// Storage returns the storage client settings. Session credentials, when
// present, replace the long-term keys.
func (c *Config) Storage(creds *auth.Credentials) storage.Settings {
	s := storage.Settings{
		Bucket:          c.BucketName,
		Endpoint:        c.EndpointURL,
		Region:          c.Region,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		CABundlePath:    c.SSLVerifyPath,
		ForcePathStyle:  c.ForcePathStyle,
	}
	if creds != nil {
		s.AccessKeyID = creds.AccessKeyID
		s.SecretAccessKey = creds.SecretAccessKey
		s.SessionToken = creds.SessionToken
	}
	return s
}

// STS returns the settings for the MFA session exchange.
func (c *Config) STS() auth.Settings {
	return auth.Settings{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Region:          c.Region,
		Endpoint:        c.STSEndpointURL,
		CABundlePath:    c.SSLVerifyPath,
	}
}

// LogValue implements slog.LogValuer. Credentials are never included.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", c.BucketName),
		slog.String("endpoint", c.EndpointURL),
		slog.String("region", c.Region),
		slog.String("backend", c.Backend),
		slog.Bool("mfa", c.HasMFA()),
		slog.String("download_dir", c.DownloadDir),
	)
}

// keys returns every configuration key in declaration order.
func keys() []string {
	t := reflect.TypeOf(Config{})
	out := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out = append(out, t.Field(i).Tag.Get("mapstructure"))
	}
	return out
}

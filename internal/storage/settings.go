package storage

// Settings describes how to reach the bucket.
type Settings struct {
	// Bucket is the bucket all operations target
	Bucket string

	// Endpoint is the S3-compatible service URL
	Endpoint string

	// Region is the signing region; defaults to us-east-1
	Region string

	// AccessKeyID, SecretAccessKey and SessionToken are static credentials.
	// SessionToken is set when the credentials came from an MFA exchange.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// CABundlePath is an optional PEM bundle used to verify the endpoint
	CABundlePath string

	// ForcePathStyle addresses the bucket in the URL path instead of the host name
	ForcePathStyle bool
}

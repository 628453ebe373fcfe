package filestore

// Provider identifies the fixture storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
	ProviderLocal Provider = "local"
)

// Config selects where seed fixtures are read from.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the MinIO server, e.g. "localhost:9000".
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`

	// Root is the directory served by the local provider. Each
	// subdirectory of Root is a bucket.
	Root string `yaml:"root"`

	// Bucket and Prefix locate the fixtures.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns a local-dev MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) Config {
	return Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Enabled reports whether a fixture source is configured.
func (c Config) Enabled() bool {
	switch c.Provider {
	case ProviderMinIO:
		return c.Endpoint != ""
	case ProviderLocal:
		return c.Root != ""
	default:
		return false
	}
}

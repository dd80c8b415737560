// Package config loads the busybox configuration.
//
// A configuration file is YAML, JSON or CUE. Every format is checked
// against the embedded CUE schema, which also supplies the defaults, before
// it is decoded into a Config. Command-line flags are applied on top with
// an Override.
package config

// Config is the complete busybox configuration.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	Store    string `json:"store" yaml:"store"`
	Capacity int64  `json:"capacity" yaml:"capacity"`

	Local *LocalConfig `json:"local,omitempty" yaml:"local,omitempty"`
	Minio *MinioConfig `json:"minio,omitempty" yaml:"minio,omitempty"`
	SFTP  *SFTPConfig  `json:"sftp,omitempty" yaml:"sftp,omitempty"`

	View ViewConfig `json:"view" yaml:"view"`
	Log  LogConfig  `json:"log" yaml:"log"`
}

// LocalConfig roots the volume in a directory on disk.
type LocalConfig struct {
	Root string `json:"root" yaml:"root"`
}

// MinioConfig places the volume in an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
	Prefix    string `json:"prefix" yaml:"prefix"`
}

// SFTPConfig places the volume under a directory on an SFTP server.
type SFTPConfig struct {
	Host                  string `json:"host" yaml:"host"`
	Port                  int    `json:"port" yaml:"port"`
	User                  string `json:"user" yaml:"user"`
	Password              string `json:"password" yaml:"password"`
	KeyFile               string `json:"key_file" yaml:"key_file"`
	Passphrase            string `json:"passphrase" yaml:"passphrase"`
	KnownHostsFile        string `json:"known_hosts_file" yaml:"known_hosts_file"`
	InsecureIgnoreHostKey bool   `json:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`
	Root                  string `json:"root" yaml:"root"`
	Timeout               string `json:"timeout" yaml:"timeout"`
}

// ViewConfig sets the hex viewer options.
type ViewConfig struct {
	Width   int    `json:"width" yaml:"width"`
	Decoder string `json:"decoder" yaml:"decoder"`
	Offsets string `json:"offsets" yaml:"offsets"`
}

// LogConfig sets the diagnostic log level.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Backend: "littlefs",
		Store:   "memory",
		View: ViewConfig{
			Width:   16,
			Decoder: "cyrillic",
			Offsets: "line",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Override holds values set on the command line. Nil fields leave the
// configuration unchanged.
type Override struct {
	Backend  *string
	Store    *string
	Root     *string
	Capacity *int64
	LogLevel *string
}

// Apply returns c with the non-nil fields of o applied. Root selects the
// directory of a local store.
func (c Config) Apply(o Override) Config {
	if o.Backend != nil {
		c.Backend = *o.Backend
	}
	if o.Store != nil {
		c.Store = *o.Store
	}
	if o.Root != nil {
		local := LocalConfig{}
		if c.Local != nil {
			local = *c.Local
		}
		local.Root = *o.Root
		c.Local = &local
	}
	if o.Capacity != nil {
		c.Capacity = *o.Capacity
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
	return c
}

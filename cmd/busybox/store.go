package main

import (
	"context"
	"os"
	"time"

	"github.com/jmgilman/busybox/config"
	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/billy"
	"github.com/jmgilman/busybox/fs/core"
	"github.com/jmgilman/busybox/fs/minio"
	"github.com/jmgilman/busybox/fs/sftp"
	"github.com/jmgilman/busybox/hexview"
)

// openStore builds the store selected by cfg. The returned function
// releases any network session the store holds.
func openStore(ctx context.Context, cfg config.Config) (core.FS, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case "memory":
		var opts []billy.Option
		if cfg.Capacity > 0 {
			opts = append(opts, billy.WithCapacity(cfg.Capacity))
		}
		return billy.NewMemory(opts...), noop, nil

	case "local":
		if cfg.Local == nil || cfg.Local.Root == "" {
			return nil, nil, errors.New(errors.CodeInvalidConfig, "local store needs a root directory")
		}
		if err := os.MkdirAll(cfg.Local.Root, 0o755); err != nil {
			return nil, nil, errors.FromFS("mkdir", cfg.Local.Root, err)
		}
		var opts []billy.Option
		if cfg.Capacity > 0 {
			opts = append(opts, billy.WithCapacity(cfg.Capacity))
		}
		return billy.NewLocal(cfg.Local.Root, opts...), noop, nil

	case "minio":
		if cfg.Minio == nil {
			return nil, nil, errors.New(errors.CodeInvalidConfig, "minio store needs a minio section")
		}
		s, err := minio.New(minio.Config{
			Endpoint:  cfg.Minio.Endpoint,
			Bucket:    cfg.Minio.Bucket,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Prefix:    cfg.Minio.Prefix,
			Capacity:  cfg.Capacity,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil

	case "sftp":
		if cfg.SFTP == nil {
			return nil, nil, errors.New(errors.CodeInvalidConfig, "sftp store needs an sftp section")
		}
		timeout, err := time.ParseDuration(cfg.SFTP.Timeout)
		if err != nil && cfg.SFTP.Timeout != "" {
			return nil, nil, errors.Wrapf(err, errors.CodeInvalidConfig, "sftp timeout %q", cfg.SFTP.Timeout)
		}
		s, err := sftp.Dial(ctx, sftp.Config{
			Host:                  cfg.SFTP.Host,
			Port:                  cfg.SFTP.Port,
			User:                  cfg.SFTP.User,
			Password:              cfg.SFTP.Password,
			KeyFile:               cfg.SFTP.KeyFile,
			Passphrase:            cfg.SFTP.Passphrase,
			KnownHostsFile:        cfg.SFTP.KnownHostsFile,
			InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
			Root:                  cfg.SFTP.Root,
			Timeout:               timeout,
			Capacity:              cfg.Capacity,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, errors.Newf(errors.CodeInvalidConfig, "unknown store %q", cfg.Store)
	}
}

// newViewer builds the viewer options from the view section.
func newViewer(v config.ViewConfig) (hexview.Viewer, error) {
	dec, err := hexview.ParseDecoder(v.Decoder)
	if err != nil {
		return hexview.Viewer{}, err
	}
	offsets, err := hexview.ParseOffsetMode(v.Offsets)
	if err != nil {
		return hexview.Viewer{}, err
	}
	return hexview.Viewer{Width: v.Width, Decoder: dec, Offsets: offsets}, nil
}

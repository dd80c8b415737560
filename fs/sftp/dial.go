package sftp

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jmgilman/busybox/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config describes how to reach an SFTP server.
type Config struct {
	Host string
	Port int // default 22
	User string

	// Password and KeyFile are tried in that order; at least one is required.
	Password   string
	KeyFile    string
	Passphrase string

	// KnownHostsFile verifies the server key. InsecureIgnoreHostKey must be
	// set explicitly to skip verification.
	KnownHostsFile        string
	InsecureIgnoreHostKey bool

	// Root is the remote directory the store is rooted at. Default: "/".
	Root string

	// Timeout bounds the TCP dial and SSH handshake. Default: 30s.
	Timeout time.Duration

	// Capacity, when set, replaces the server's statvfs figures.
	Capacity int64
}

func (c Config) validate() error {
	if c.Host == "" {
		return errors.New(errors.CodeInvalidConfig, "sftp host is required")
	}
	if c.User == "" {
		return errors.New(errors.CodeInvalidConfig, "sftp user is required")
	}
	if c.Password == "" && c.KeyFile == "" {
		return errors.New(errors.CodeInvalidConfig, "sftp password or key file is required")
	}
	if c.KnownHostsFile == "" && !c.InsecureIgnoreHostKey {
		return errors.New(errors.CodeInvalidConfig, "sftp known hosts file is required unless host key checking is disabled")
	}
	return nil
}

func (c Config) clientConfig() (*ssh.ClientConfig, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg := &ssh.ClientConfig{
		User:    c.User,
		Timeout: timeout,
	}

	if c.InsecureIgnoreHostKey {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in
	} else {
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load known hosts")
		}
		cfg.HostKeyCallback = cb
	}

	if c.Password != "" {
		cfg.Auth = append(cfg.Auth, ssh.Password(c.Password))
	}
	if c.KeyFile != "" {
		signer, err := loadKey(c.KeyFile, c.Passphrase)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to load key %s", c.KeyFile)
		}
		cfg.Auth = append(cfg.Auth, ssh.PublicKeys(signer))
	}
	return cfg, nil
}

func loadKey(path, passphrase string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(data)
}

// Dial connects to the server described by cfg and returns a store rooted
// at cfg.Root. Close releases both the SFTP session and the SSH connection.
func Dial(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sshCfg, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: sshCfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNetwork, "dial %s", addr)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, errors.CodeNetwork, "ssh handshake with %s", addr)
	}
	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, errors.Wrap(err, errors.CodeNetwork, "start sftp session")
	}

	var opts []Option
	if cfg.Capacity > 0 {
		opts = append(opts, WithCapacity(cfg.Capacity))
	}
	s, err := New(client, cfg.Root, opts...)
	if err != nil {
		_ = client.Close()
		_ = sshClient.Close()
		return nil, err
	}
	s.conn = sshClient
	return s, nil
}

// String describes the remote endpoint for logs.
func (c Config) String() string {
	return fmt.Sprintf("sftp://%s@%s:%d%s", c.User, c.Host, c.Port, c.Root)
}

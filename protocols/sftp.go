package protocols

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type SFTPFileSystem struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey string // path to a PEM private key, used when set
	RootPath   string
	Timeout    time.Duration
	client     *sftp.Client
	sshConn    *ssh.Client
}

func (s *SFTPFileSystem) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if s.PrivateKey != "" {
		pem, err := os.ReadFile(s.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if s.Password != "" {
		methods = append(methods, ssh.Password(s.Password))
	}
	return methods, nil
}

func (s *SFTPFileSystem) Init(ctx context.Context) error {
	auth, err := s.authMethods()
	if err != nil {
		return err
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	config := &ssh.ClientConfig{
		User:            s.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	conn, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return err
	}
	s.sshConn = conn

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return err
	}
	s.client = client
	return nil
}

func (s *SFTPFileSystem) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	if s.sshConn != nil {
		s.sshConn.Close()
	}
	return nil
}

func (s *SFTPFileSystem) full(relPath string) string {
	if s.RootPath == "" {
		return path.Join("/", CleanPath(relPath))
	}
	return path.Join(s.RootPath, CleanPath(relPath))
}

func (s *SFTPFileSystem) List(_ context.Context, relPath string) ([]Entry, error) {
	infos, err := s.client.ReadDir(s.full(relPath))
	if err != nil {
		return nil, fmt.Errorf("sftp: read dir %q: %w", relPath, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fileInfoEntry(relPath, info))
	}
	return entries, nil
}

func (s *SFTPFileSystem) FileSize(_ context.Context, relPath string) (int64, error) {
	info, err := s.client.Stat(s.full(relPath))
	if err != nil {
		return 0, fmt.Errorf("sftp: stat %q: %w", relPath, err)
	}
	return info.Size(), nil
}

func (s *SFTPFileSystem) LastModified(_ context.Context, relPath string) (time.Time, error) {
	info, err := s.client.Stat(s.full(relPath))
	if err != nil {
		return time.Time{}, fmt.Errorf("sftp: stat %q: %w", relPath, err)
	}
	return info.ModTime(), nil
}

func (s *SFTPFileSystem) Capabilities() Capabilities {
	return Capabilities{DirectoryMetadata: true}
}

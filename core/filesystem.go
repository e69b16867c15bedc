package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"storagels/config"
	"storagels/logging"
	"storagels/protocols"
)

// OpenDisk builds and connects the backend for a configured disk.
func OpenDisk(ctx context.Context, disk config.Disk) (protocols.FileSystem, error) {
	timeout := time.Duration(disk.TimeoutSeconds) * time.Second

	switch disk.Driver {
	case "local":
		if disk.Root == "" {
			return nil, fmt.Errorf("root required for local")
		}
		return protocols.NewLocalFileSystem(disk.Root)
	case "memory":
		return protocols.NewMemoryFileSystem(), nil
	case "sftp":
		if disk.Auth == nil {
			return nil, fmt.Errorf("auth required for sftp")
		}
		fs := &protocols.SFTPFileSystem{
			Host:       disk.Auth.Host,
			Port:       portOr(disk.Auth.Port, 22),
			User:       disk.Auth.User,
			Password:   disk.Auth.Password,
			PrivateKey: disk.Auth.PrivateKey,
			RootPath:   disk.Root,
			Timeout:    timeout,
		}
		return fs, fs.Init(ctx)
	case "ftp":
		if disk.Auth == nil {
			return nil, fmt.Errorf("auth required for ftp")
		}
		fs := &protocols.FTPFileSystem{
			Host:     disk.Auth.Host,
			Port:     portOr(disk.Auth.Port, 21),
			User:     disk.Auth.User,
			Password: disk.Auth.Password,
			RootPath: disk.Root,
			Timeout:  timeout,
		}
		return fs, fs.Init(ctx)
	case "s3":
		return protocols.NewS3FileSystem(ctx, protocols.S3Config{
			Bucket:    disk.Bucket,
			Prefix:    disk.Prefix,
			Region:    disk.Region,
			Endpoint:  disk.Endpoint,
			AccessKey: disk.AccessKey,
			SecretKey: disk.SecretKey,
		})
	case "minio":
		return protocols.NewMinioFileSystem(protocols.MinioConfig{
			Endpoint:  disk.Endpoint,
			Bucket:    disk.Bucket,
			Prefix:    disk.Prefix,
			Region:    disk.Region,
			AccessKey: disk.AccessKey,
			SecretKey: disk.SecretKey,
			UseSSL:    disk.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown driver: %q", disk.Driver)
	}
}

func portOr(port, def int) int {
	if port == 0 {
		return def
	}
	return port
}

func closeDisk(name string, fs protocols.FileSystem) {
	if err := fs.Close(); err != nil {
		logging.L().Warn("close disk", zap.String("disk", name), zap.Error(err))
	}
}

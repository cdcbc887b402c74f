// Package storage 归档上传的凭证原件，返回可供前端回看的链接
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dkphhh/easy-finance/internal/config"
)

// Archive 凭证归档接口
type Archive interface {
	// Store 保存一份凭证原件，返回有时效的访问链接
	Store(ctx context.Context, fileName string, data []byte, contentType string) (string, error)
}

// minioArchive 基于MinIO的凭证归档实现
type minioArchive struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// NewMinIOArchive 创建MinIO归档客户端并确保存储桶存在
func NewMinIOArchive(cfg config.StorageConfig) (Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	a := &minioArchive{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: cfg.URLExpiry,
	}

	if err := a.ensureBucket(context.Background()); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *minioArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}

	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建存储桶失败: %w", err)
		}
	}

	return nil
}

// Store 按 日期/uuid+扩展名 命名对象，避免同名上传相互覆盖
func (a *minioArchive) Store(ctx context.Context, fileName string, data []byte, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s%s",
		time.Now().Format("20060102"), uuid.New().String(), filepath.Ext(fileName))

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传凭证原件失败: %w", err)
	}

	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, a.urlExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成访问链接失败: %w", err)
	}

	return url.String(), nil
}

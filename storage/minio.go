package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"submerge/config"
	"submerge/logger"
)

var (
	minioClient *minio.Client
	minioCfg    *config.Config
)

// InitMinio initializes the MinIO client and makes sure the media bucket
// exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created media bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	minioCfg = cfg
	logger.Info("MinIO client initialized", logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient returns the MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// MediaObjectKey builds the storage key for an uploaded asset, namespaced by
// media kind and upload time: "{mediaType}s/{unixMillis}_{filename}".
func MediaObjectKey(mediaType, filename string) string {
	if filename == "" {
		filename = "media"
	}
	return fmt.Sprintf("%ss/%d_%s", mediaType, time.Now().UnixMilli(), filename)
}

// UploadMedia writes a blob and returns its public download URL. The write
// is all-or-nothing: any failure leaves no usable URL behind.
func UploadMedia(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}

	_, err := minioClient.PutObject(ctx, minioCfg.MinioBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	return PublicURL(objectName), nil
}

// PublicURL builds the externally reachable URL of a stored object.
func PublicURL(objectName string) string {
	if minioCfg == nil {
		return objectName
	}
	if minioCfg.MinioPublicURL != "" {
		return fmt.Sprintf("%s/%s/%s", minioCfg.MinioPublicURL, minioCfg.MinioBucket, objectName)
	}
	scheme := "http"
	if minioCfg.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, minioCfg.MinioEndpoint, minioCfg.MinioBucket, objectName)
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

// Store archives submitted inputs and generated reports to object storage so
// an analysis can be re-examined later. Archiving is best-effort; the session
// never fails because the archive is down.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// ArchiveInput stores the log text and every image of one submission under
// the analysis record id. Implements session.Archiver.
func (s *Store) ArchiveInput(ctx context.Context, id string, req analysis.Request) error {
	if req.LogText != "" {
		key := fmt.Sprintf("%s/input.log", id)
		if err := s.upload(ctx, key, []byte(req.LogText), "text/plain; charset=utf-8"); err != nil {
			return err
		}
	}
	for i, img := range req.Images {
		key := fmt.Sprintf("%s/image-%d%s", id, i, extensionFor(img.MIMEType))
		if err := s.upload(ctx, key, img.Data, img.MIMEType); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveReport stores a rendered CSV report next to the inputs.
func (s *Store) ArchiveReport(ctx context.Context, id string, csvData []byte) error {
	return s.upload(ctx, fmt.Sprintf("%s/report.csv", id), csvData, "text/csv")
}

func (s *Store) upload(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}

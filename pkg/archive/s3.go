package archive

import (
	"fmt"
	"time"

	"github.com/gofiber/storage/s3/v2"
)

// S3Archive stores snapshot backups in an S3-compatible bucket, replacing the
// local backup files the catalog used to write next to the process.
type S3Archive struct {
	bucket *s3.Storage
}

func NewS3Archive(endpoint, bucket, region, accessKey, secretKey string) *S3Archive {
	storage := s3.New(s3.Config{
		Endpoint: endpoint,
		Bucket:   bucket,
		Region:   region,
		Credentials: s3.Credentials{
			AccessKey:       accessKey,
			SecretAccessKey: secretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &S3Archive{
		bucket: storage,
	}
}

// Save uploads one snapshot document. Expiry zero keeps backups forever.
func (a *S3Archive) Save(key string, data []byte) error {
	return a.bucket.Set(key, data, 0)
}

func (a *S3Archive) Load(key string) ([]byte, error) {
	return a.bucket.Get(key)
}

// BackupKey names a backup object the same way the old on-disk backups were
// named, e.g. "backups/backup_20240411_153000.json".
func BackupKey(t time.Time) string {
	return fmt.Sprintf("backups/backup_%s.json", t.Format("20060102_150405"))
}

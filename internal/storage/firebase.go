package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"dompet/internal/logger"
)

// FirebaseStore keeps objects in a Firebase Cloud Storage bucket.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseStore connects to bucket with the service account in credentialsFile.
// An empty credentialsFile falls back to application default credentials.
func NewFirebaseStore(ctx context.Context, bucket, credentialsFile string) (*FirebaseStore, error) {
	if bucket == "" {
		return nil, errors.New("storage: FIREBASE_BUCKET is required for the firebase driver")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: init firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: init firebase storage: %w", err)
	}
	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("storage: open bucket %s: %w", bucket, err)
	}

	logger.Get().Infow("Firebase storage initialized", "bucket", bucket)
	return &FirebaseStore{bucket: handle, bucketName: bucket}, nil
}

// Upload streams body into the bucket and returns its download URL.
func (s *FirebaseStore) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}

	w := s.bucket.Object(p).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: upload %s: %w", p, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", p, err)
	}

	return s.objectURL(p), nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *FirebaseStore) Delete(ctx context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(p).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}

func (s *FirebaseStore) objectURL(p string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucketName, url.PathEscape(p))
}

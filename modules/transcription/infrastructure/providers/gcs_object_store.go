package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"sessioncore/server/modules/transcription/domain/services"
)

// GCSObjectStore is the out-of-scope persistent blob collaborator (spec §6),
// backed by Google Cloud Storage.
type GCSObjectStore struct {
	client     *storage.Client
	bucketName string
}

// NewGCSObjectStore constructs a GCSObjectStore using the service account
// credentials at credentialsPath.
func NewGCSObjectStore(ctx context.Context, bucketName, credentialsPath string) (*GCSObjectStore, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	client, err := storage.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSObjectStore{client: client, bucketName: bucketName}, nil
}

func (s *GCSObjectStore) Upload(ctx context.Context, path string, data []byte, contentType string) (*services.UploadResult, error) {
	return s.UploadStream(ctx, path, bytes.NewReader(data), contentType)
}

func (s *GCSObjectStore) UploadStream(ctx context.Context, path string, r io.Reader, contentType string) (*services.UploadResult, error) {
	bucket := s.client.Bucket(s.bucketName)
	obj := bucket.Object(path)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"uploadedAt": time.Now().Format(time.RFC3339)}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return nil, fmt.Errorf("write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close object writer %s: %w", path, err)
	}

	signedURL, err := bucket.SignedURL(path, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		log.Printf("warning: failed to sign URL for %s, falling back to gs:// URI: %v", path, err)
		signedURL = fmt.Sprintf("gs://%s/%s", s.bucketName, path)
	}

	return &services.UploadResult{Path: path, PublicURL: signedURL}, nil
}

func (s *GCSObjectStore) Download(ctx context.Context, path string) ([]byte, error) {
	objectName := strings.TrimPrefix(path, fmt.Sprintf("gs://%s/", s.bucketName))
	r, err := s.client.Bucket(s.bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object reader %s: %w", path, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSObjectStore) Delete(ctx context.Context, paths []string) []services.DeleteResult {
	results := make([]services.DeleteResult, 0, len(paths))
	bucket := s.client.Bucket(s.bucketName)
	for _, path := range paths {
		objectName := strings.TrimPrefix(path, fmt.Sprintf("gs://%s/", s.bucketName))
		err := bucket.Object(objectName).Delete(ctx)
		results = append(results, services.DeleteResult{Path: path, Err: err})
	}
	return results
}

// Close releases the underlying GCS client.
func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

var _ services.ObjectStore = (*GCSObjectStore)(nil)

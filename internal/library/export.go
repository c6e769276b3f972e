package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ExportFilename is fixed regardless of the script's title; the browser
// release always downloaded under this name.
const ExportFilename = "thai-news-script.txt"

// ExportScript writes the script as plain UTF-8 text with no front matter
// and returns the written path.
func ExportScript(dir, scriptText string) (string, error) {
	if strings.TrimSpace(scriptText) == "" {
		return "", fmt.Errorf("export script: script is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename)
	if err := os.WriteFile(path, []byte(scriptText), 0o644); err != nil {
		return "", fmt.Errorf("write script export: %w", err)
	}
	return path, nil
}

// Storage pushes exported scripts to S3 for server deployments and returns
// a CDN URL for the uploaded object.
type Storage struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

// NewStorage creates an S3 export handler.
func NewStorage(client *s3.Client, bucket, cdnBaseURL string) *Storage {
	return &Storage{client: client, bucket: bucket, cdnBaseURL: cdnBaseURL}
}

// Upload stores the script text under the item's ID and returns the S3 key
// and public URL.
func (s *Storage) Upload(ctx context.Context, itemID, scriptText string) (key, url string, err error) {
	if strings.TrimSpace(scriptText) == "" {
		return "", "", fmt.Errorf("upload script: script is empty")
	}
	key = "scripts/" + itemID + ".txt"

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          strings.NewReader(scriptText),
		ContentType:   aws.String("text/plain; charset=utf-8"),
		ContentLength: aws.Int64(int64(len(scriptText))),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload to s3: %w", err)
	}

	url = s.cdnBaseURL + "/" + key
	return key, url, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/OFFIS-RIT/kiwi/explorer/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// GraphPrefix is the key prefix under which uploaded graph documents live.
const GraphPrefix = "graphs/"

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// Bucket returns the configured bucket, or "" when storage is disabled.
func Bucket() string {
	return util.GetEnv("AWS_BUCKET")
}

// Enabled reports whether AWS_BUCKET is set.
func Enabled() bool {
	return Bucket() != ""
}

// NewS3Client builds a path-style client from the AWS_* environment.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	if !Enabled() {
		return nil, ErrDisabled
	}
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// PutFile uploads file as <dir>/<name> and returns the object key.
func PutFile(ctx context.Context, client *s3.Client, dir string, name string, file io.ReadSeeker) (string, error) {
	key := path.Join(dir, name)
	mimeType := mime.TypeByExtension(path.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(Bucket()),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return key, nil
}

// DeleteFolder removes every object below prefix.
func DeleteFolder(ctx context.Context, client *s3.Client, prefix string) error {
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(Bucket()),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return fmt.Errorf("failed to list objects in folder %s: %w", prefix, err)
		}

		if len(listOutput.Contents) == 0 {
			break
		}

		var objectsToDelete []types.ObjectIdentifier
		for _, obj := range listOutput.Contents {
			objectsToDelete = append(objectsToDelete, types.ObjectIdentifier{
				Key: obj.Key,
			})
		}

		_, err = client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(Bucket()),
			Delete: &types.Delete{
				Objects: objectsToDelete,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects in folder %s: %w", prefix, err)
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return nil
}

// ListFilesWithPrefix returns every object key below prefix.
func ListFilesWithPrefix(ctx context.Context, client *s3.Client, prefix string) ([]string, error) {
	var keys []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(Bucket()),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}

		for _, obj := range listOutput.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return keys, nil
}

// DocumentKey maps a document id and format to its storage key. JSON
// documents are single objects, CSV documents are a folder holding
// nodes.csv, edges.csv and optionally metadata.json.
func DocumentKey(id string, format string) string {
	if format == "csv" {
		return GraphPrefix + id
	}
	return GraphPrefix + id + ".json"
}

// DocumentID is the inverse of DocumentKey. ok is false for keys outside
// GraphPrefix.
func DocumentID(key string) (id string, format string, ok bool) {
	rest, found := strings.CutPrefix(key, GraphPrefix)
	if !found || rest == "" {
		return "", "", false
	}
	if dir, _, nested := strings.Cut(rest, "/"); nested {
		return dir, "csv", dir != ""
	}
	if base, isJSON := strings.CutSuffix(rest, ".json"); isJSON && base != "" {
		return base, "json", true
	}
	return "", "", false
}

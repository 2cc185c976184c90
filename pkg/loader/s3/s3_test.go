package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/loader"
)

type fakeBucket struct {
	objects map[string]string
	calls   atomic.Int32
}

func (f *fakeBucket) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls.Add(1)
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestGetFileContentCaches(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{"graphs/a.json": `{"nodes": []}`}}
	l := NewS3GraphFileLoaderWithClient("graphs", bucket)
	file := loader.NewGraphJSONFile(loader.NewGraphFileParams{ID: "a", FilePath: "graphs/a.json", Loader: l})

	for range 3 {
		got, err := file.GetContent(context.Background())
		if err != nil || string(got) != `{"nodes": []}` {
			t.Fatalf("GetContent = %q, %v", got, err)
		}
	}
	if n := bucket.calls.Load(); n != 1 {
		t.Fatalf("expected one GetObject call, got %d", n)
	}
}

func TestGetFileContentMissing(t *testing.T) {
	l := NewS3GraphFileLoaderWithClient("graphs", &fakeBucket{objects: map[string]string{}})
	if _, err := l.GetFileContent(context.Background(), loader.GraphFile{FilePath: "graphs/none.json"}); err == nil {
		t.Fatal("expected an error for a missing object")
	}
}

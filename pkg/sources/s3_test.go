package sources

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marleypowell/astal/pkg/scheduler"
	"github.com/marleypowell/astal/pkg/variable"
)

// stubS3 serves objects from an in-memory map keyed by "bucket/key".
type stubS3 struct {
	objects map[string]string
	err     error
	calls   int
}

func (c *stubS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	body, ok := c.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3ObjectReadsContent(t *testing.T) {
	client := &stubS3{objects: map[string]string{
		"config/flags.json": `{"dark_mode":true}` + "\n",
	}}

	fetch := S3Object(client, "config", "flags.json")
	got, err := fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != `{"dark_mode":true}` {
		t.Errorf("expected trimmed body, got %q", got)
	}
}

func TestS3ObjectWrapsError(t *testing.T) {
	boom := errors.New("AccessDenied")
	client := &stubS3{err: boom}

	fetch := S3Object(client, "config", "flags.json")
	_, err := fetch(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped AccessDenied, got %v", err)
	}
	if !strings.Contains(err.Error(), "config/flags.json") {
		t.Errorf("error should name the object, got %v", err)
	}
}

func TestS3ObjectFeedsVariable(t *testing.T) {
	client := &stubS3{objects: map[string]string{
		"config/flags.json": "v1",
	}}

	fake := scheduler.NewFake()
	v := variable.New("", variable.WithScheduler(fake))
	defer v.Drop()

	updated := make(chan string, 1)
	v.Subscribe(func(s string) { updated <- s })
	v.PollContext(time.Minute, S3Object(client, "config", "flags.json"))

	fake.Advance(time.Minute)
	select {
	case got := <-updated:
		if got != "v1" {
			t.Errorf("expected v1, got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poll never applied the object")
	}

	if client.calls != 1 {
		t.Errorf("expected 1 GetObject call, got %d", client.calls)
	}
}

// Package sources provides ready-made fetch functions for
// Variable.PollContext: network-backed value sources that feed a variable
// on a timer.
package sources

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client used by S3Object. Satisfied by
// *s3.Client; tests substitute a stub.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Object returns a fetch function that reads the object's content as a
// string. Wire it to a variable with PollContext:
//
//	cfg := variable.New("").
//	    PollContext(time.Minute, sources.S3Object(client, "my-bucket", "config/flags.json")).
//	    OnError(func(err error) { slog.Error("config poll", "error", err) })
//
// Fetch errors propagate to the variable's error handler; the previous
// value is kept for that tick.
func S3Object(client S3API, bucket, key string) func(ctx context.Context, prev string) (string, error) {
	return func(ctx context.Context, prev string) (string, error) {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return "", fmt.Errorf("astal: s3 get %s/%s: %w", bucket, key, err)
		}
		defer out.Body.Close()

		body, err := io.ReadAll(out.Body)
		if err != nil {
			return "", fmt.Errorf("astal: s3 read %s/%s: %w", bucket, key, err)
		}
		return strings.TrimRight(string(body), "\n"), nil
	}
}

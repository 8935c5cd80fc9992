// Package preflight verifies the S3 sources of a run before any COPY is
// issued. A COPY against a missing or unreadable prefix fails deep inside the
// warehouse with an opaque load error; checking the prefixes up front turns
// that into a fast, clearly attributed abort while no staging table has been
// touched yet.
//
// The check is intentionally shallow: one ListObjectsV2 call per source asking
// for a single key. It proves the prefix exists and the caller's credentials
// can list it; it does not prove the warehouse's IAM role can read it.
package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

// Lister is the single S3 operation the check needs; *s3.Client satisfies it.
type Lister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// SplitURI splits an s3://bucket/key URI into bucket and key. The key may be
// empty (bucket root).
func SplitURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("preflight: %q is not an s3:// URI", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("preflight: %q has no bucket", uri)
	}
	return bucket, key, nil
}

// Check verifies that every URI names a listable, non-empty S3 location. The
// sources are independent, so they are checked concurrently; the first failure
// wins and names the offending URI.
func Check(ctx context.Context, client Lister, uris ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, uri := range uris {
		g.Go(func() error {
			return checkOne(ctx, client, uri)
		})
	}
	return g.Wait()
}

func checkOne(ctx context.Context, client Lister, uri string) error {
	bucket, key, err := SplitURI(uri)
	if err != nil {
		return err
	}
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("preflight: list %s: %w", uri, err)
	}
	if out.KeyCount == nil || *out.KeyCount == 0 {
		return fmt.Errorf("preflight: %s matches no objects", uri)
	}
	return nil
}

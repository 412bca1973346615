// Package dayfetch fetches a single day-file's bytes from a local path or
// a gs://, s3://, or file:// blob URL, retrying blob-fetch failures with
// bounded exponential backoff and reporting every failure as an IoError.
// It is shared by the current and diffusivity field services
// so both stream day-files through the same addressing scheme, grounded on
// the teacher's own inmaputil/download.go OpenBucket/NewReader pattern.
package dayfetch

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"

	"github.com/oceantracer/driftmap/internal/xerrors"
)

// IsRemote reports whether path names a blob bucket rather than a local
// file: it has a gs://, s3://, or file:// scheme.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// Fetch returns the contents of path, which may be a local filesystem path
// or a gs://bucket/key, s3://bucket/key, or file://bucket/key blob
// reference. Blob fetches are retried with bounded exponential backoff
// (up to 10 s in total); local reads are not retried. Every error Fetch
// returns wraps xerrors.IoError.
func Fetch(ctx context.Context, path string) ([]byte, error) {
	if !IsRemote(path) {
		b, err := readLocal(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.IoError, err)
		}
		return b, nil
	}

	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid blob path %q: %v", xerrors.IoError, path, err)
	}

	var data []byte
	op := func() error {
		bucket, err := openBucket(ctx, u.Scheme+"://"+u.Host)
		if err != nil {
			return err
		}
		r, err := bucket.NewReader(ctx, strings.TrimPrefix(u.Path, "/"))
		if err != nil {
			return err
		}
		defer r.Close()
		b, err := ioutil.ReadAll(r)
		if err != nil {
			return err
		}
		data = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("%w: fetching %q: %v", xerrors.IoError, path, err)
	}
	return data, nil
}

func readLocal(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

// openBucket opens the blob storage bucket named by bucketName, of the
// form "scheme://host".
func openBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("dayfetch: unsupported blob provider %q", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	cfg := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, sess, name)
}

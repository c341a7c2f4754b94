// Package sthree implements a storage backend on AWS S3 or any S3-compatible service (e.g. minio).
package sthree

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/oneconcern/datagit/pkg/storage"
	"github.com/oneconcern/datagit/pkg/storage/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// PageSize is the maximum number of keys returned by one listing call
const PageSize = 1000

// Option for the S3 backend
type Option func(*s3FS)

// AWSConfig sets the AWS client configuration (region, endpoint, credentials)
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// Profile sets the named profile from the AWS shared configuration
func Profile(profile string) Option {
	return func(fs *s3FS) {
		fs.profile = profile
	}
}

// LocalFs sets the file system on which local object files are read and written
func LocalFs(local afero.Fs) Option {
	return func(fs *s3FS) {
		if local != nil {
			fs.local = local
		}
	}
}

// Logger specifies a logger for this store
func Logger(logger *zap.Logger) Option {
	return func(fs *s3FS) {
		if logger != nil {
			fs.l = logger
		}
	}
}

// New S3 backend for a bucket. The client is created by Connect.
func New(bucket string, options ...Option) storage.Store {
	fs := &s3FS{
		bucket:    bucket,
		awsConfig: aws.NewConfig(),
		local:     afero.NewOsFs(),
		l:         zap.NewNop(),
	}
	for _, apply := range options {
		apply(fs)
	}
	return fs
}

type s3FS struct {
	bucket     string
	profile    string
	awsConfig  *aws.Config
	local      afero.Fs
	s3         *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	l          *zap.Logger
}

func (s *s3FS) String() string {
	return "s3h://" + s.bucket
}

func (s *s3FS) Connect(ctx context.Context) error {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *s.awsConfig,
		Profile:           s.profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return status.ErrConnect.Detailf("%s", s).Wrap(err)
	}

	client := s3.New(sess)
	if _, err = client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return status.ErrConnect.Detailf("%s", s).Wrap(toSentinelErrors(err))
	}

	s.s3 = client
	s.uploader = s3manager.NewUploaderWithClient(client)
	s.downloader = s3manager.NewDownloaderWithClient(client)
	s.l.Debug("s3 backend connected", zap.String("bucket", s.bucket))
	return nil
}

func (s *s3FS) connected() error {
	if s.s3 == nil {
		return status.ErrNotConnected.Detailf("%s", s)
	}
	return nil
}

func (s *s3FS) has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if rerr, ok := err.(awserr.RequestFailure); ok && rerr.StatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, toSentinelErrors(err)
	}
	return true, nil
}

func (s *s3FS) Put(ctx context.Context, localPath, key string) (string, error) {
	if err := s.connected(); err != nil {
		return "", err
	}
	has, err := s.has(ctx, key)
	if err != nil {
		return "", err
	}
	if has {
		s.l.Debug("object already stored", zap.String("key", key))
		return key, nil
	}

	source, err := s.local.Open(localPath)
	if err != nil {
		return "", status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	defer source.Close()

	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   source,
	})
	if err != nil {
		return "", toSentinelErrors(err)
	}
	return key, nil
}

func (s *s3FS) Get(ctx context.Context, localPath, key string) error {
	if err := s.connected(); err != nil {
		return err
	}

	var remoteErr error
	err := storage.WriteAtomic(s.local, localPath, func(w io.Writer) error {
		input := &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}
		if wa, ok := w.(io.WriterAt); ok {
			_, remoteErr = s.downloader.DownloadWithContext(ctx, wa, input)
			return remoteErr
		}
		obj, e := s.s3.GetObjectWithContext(ctx, input)
		if e != nil {
			remoteErr = e
			return e
		}
		defer obj.Body.Close()
		_, e = io.Copy(w, obj.Body)
		return e
	})
	if remoteErr != nil {
		return toSentinelErrors(remoteErr)
	}
	if err != nil {
		return status.ErrLocalIO.Detailf("path %s", localPath).Wrap(err)
	}
	return nil
}

func (s *s3FS) Delete(ctx context.Context, key string) error {
	if err := s.connected(); err != nil {
		return err
	}
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return toSentinelErrors(err)
}

func (s *s3FS) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.connected(); err != nil {
		return nil, err
	}
	var keys []string
	eachPage := func(page *s3.ListObjectsV2Output, more bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if key != "" {
				keys = append(keys, key)
			}
		}
		return true
	}
	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(PageSize),
	}

	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, toSentinelErrors(err)
	}
	return keys, nil
}

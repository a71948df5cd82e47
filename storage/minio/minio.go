package minio

import (
	"bytes"
	"context"
	"io"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
)

type objectStore struct {
	client *minio.Client
	bucket string
}

func NewObjectStore(cfg config.Config) (storage.ObjectStoreI, error) {
	client, err := minio.New(cfg.MinioHost, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKeyID, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio.New")
	}

	return &objectStore{
		client: client,
		bucket: cfg.MinioBucket,
	}, nil
}

func (o *objectStore) EnsureBucket(ctx context.Context) error {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "minio.EnsureBucket")
	defer dbSpan.Finish()

	exists, err := o.client.BucketExists(ctx, o.bucket)
	if err != nil {
		return errors.Wrap(err, "bucket exists")
	}
	if exists {
		return nil
	}

	err = o.client.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{Region: ""})
	if err != nil {
		return errors.Wrapf(err, "make bucket %s", o.bucket)
	}

	return nil
}

func (o *objectStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "minio.Put")
	defer dbSpan.Finish()

	dbSpan.SetTag("key", key)

	_, err := o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return errors.Wrapf(err, "put object %s", key)
	}

	return nil
}

func (o *objectStore) Get(ctx context.Context, key string) ([]byte, error) {
	dbSpan, ctx := opentracing.StartSpanFromContext(ctx, "minio.Get")
	defer dbSpan.Finish()

	dbSpan.SetTag("key", key)

	obj, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Wrapf(storage.ErrNotFound, "object %s", key)
		}
		return nil, errors.Wrapf(err, "read object %s", key)
	}

	return data, nil
}

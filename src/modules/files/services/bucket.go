package files

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
)

var ErrObjectNotFound = errors.New("object not found")

// Bucket is the object storage the file service writes to.
type Bucket interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type MinioBucket struct {
	client *minio.Client
	name   string
}

func NewMinioBucket(client *minio.Client, name string) *MinioBucket {
	return &MinioBucket{client: client, name: name}
}

func (b *MinioBucket) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.name, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (b *MinioBucket) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", err
	}
	var buf bytes.Buffer
	buf.Grow(int(stat.Size))
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), stat.ContentType, nil
}

func (b *MinioBucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.name, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, err
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arthur-debert/mothball/pkg/errors"
	"github.com/arthur-debert/mothball/pkg/schema"
)

// S3API is the subset of the AWS S3 client used by the sink. The
// interface allows mocking in tests.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ S3API = (*s3.Client)(nil)

// S3 is an archive sink writing one JSON object per record under
// <prefix>/<type>/<identity>.json. Object storage cannot assign
// identities, so records must carry a non-zero identity before they
// are archived here.
type S3 struct {
	client  S3API
	schemas *schema.Set
	bucket  string
	prefix  string
}

// NewS3 creates an S3 sink using the default AWS credential chain
func NewS3(ctx context.Context, schemas *schema.Set, bucket, prefix string) (*S3, error) {
	if bucket == "" {
		return nil, errors.New(errors.ErrInvalidInput, "bucket cannot be empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence, "loading AWS configuration")
	}

	return &S3{
		client:  s3.NewFromConfig(cfg),
		schemas: schemas,
		bucket:  bucket,
		prefix:  prefix,
	}, nil
}

// NewS3WithClient creates an S3 sink over a custom client
// implementation. This is primarily used for testing with mocks.
func NewS3WithClient(client S3API, schemas *schema.Set, bucket, prefix string) *S3 {
	return &S3{
		client:  client,
		schemas: schemas,
		bucket:  bucket,
		prefix:  prefix,
	}
}

// Save writes the instance's attribute snapshot as a JSON object
func (st *S3) Save(instance interface{}) error {
	s, err := st.schemas.For(instance)
	if err != nil {
		return err
	}

	id, ok := s.Identity(instance)
	if !ok || id == nil || reflect.ValueOf(id).IsZero() {
		return errors.Newf(errors.ErrPersistence,
			"cannot archive %s without a non-zero identity", s.Name())
	}

	attrs, err := snapshotAttrs(s, instance)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(attrs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence,
			"encoding attributes of %s", s.Name())
	}

	key := st.Key(s.Name(), id)
	_, err = st.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence,
			"writing s3://%s/%s", st.bucket, key)
	}

	log.Trace().Str("type", s.Name()).Str("key", key).Msg("Archived record to S3")
	return nil
}

// Key returns the object key used for a record
func (st *S3) Key(typeName string, id interface{}) string {
	return path.Join(st.prefix, typeName, fmt.Sprintf("%v.json", id))
}

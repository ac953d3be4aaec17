package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body     []byte
	metadata map[string]string
}

// fakeS3 is an in-memory stand-in for both the client and the uploader.
type fakeS3 struct {
	objects   map[string]fakeObject
	bucketErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) Upload(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{body: data, metadata: in.Metadata}
	return &manager.UploadOutput{Key: in.Key}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.body))}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.bucketErr != nil {
		return nil, f.bucketErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Archive_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	a := newS3Archive("bucket", "vw", fake, fake)

	v, err := a.GetSnapshotVersion("player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, a.PutSnapshot("player-1", strings.NewReader("sealed"), 6, 42))
	assert.Contains(t, fake.objects, "vw/snapshots/player-1.snap")

	v, err = a.GetSnapshotVersion("player-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	var buf bytes.Buffer
	require.NoError(t, a.GetSnapshot("player-1", &buf))
	assert.Equal(t, "sealed", buf.String())
}

func TestS3Archive_Errors(t *testing.T) {
	fake := newFakeS3()
	a := newS3Archive("bucket", "", fake, fake)

	err := a.PutSnapshot("p", strings.NewReader("abc"), 5, 1)
	assert.Error(t, err, "size mismatch should fail")

	var buf bytes.Buffer
	err = a.GetSnapshot("missing", &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot not found")

	require.NoError(t, a.ValidateSetup())
	fake.bucketErr = errors.New("access denied")
	assert.Error(t, a.ValidateSetup())
}

func TestS3Archive_BadVersionMetadata(t *testing.T) {
	fake := newFakeS3()
	fake.objects["snapshots/p.snap"] = fakeObject{metadata: map[string]string{versionMetadataKey: "abc"}}
	a := newS3Archive("bucket", "", fake, fake)

	_, err := a.GetSnapshotVersion("p")
	assert.Error(t, err)
}

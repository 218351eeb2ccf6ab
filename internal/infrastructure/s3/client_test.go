package s3infra

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadImage_DataURI(t *testing.T) {
	f := &fakePutter{}
	store := NewStore(f, "rentall-uploads", "ap-southeast-1", "")

	b64 := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
	url, err := store.UploadImage(context.Background(), "ids/u1", b64)
	require.NoError(t, err)

	assert.Equal(t, "https://rentall-uploads.s3.ap-southeast-1.amazonaws.com/ids/u1.png", url)
	assert.Equal(t, "ids/u1.png", aws.ToString(f.in.Key))
	assert.Equal(t, "image/png", aws.ToString(f.in.ContentType))
	assert.Equal(t, pngHeader, f.body)
}

func TestUploadImage_LocalEndpointURL(t *testing.T) {
	store := NewStore(&fakePutter{}, "bucket", "us-east-1", "http://localhost:4566/")
	url, err := store.UploadImage(context.Background(), "profiles/u1", base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566/bucket/profiles/u1.png", url)
}

func TestUploadImage_RejectsBadInput(t *testing.T) {
	store := NewStore(&fakePutter{}, "bucket", "us-east-1", "")

	_, err := store.UploadImage(context.Background(), "ids/u1", "%%%")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.UploadImage(context.Background(), "ids/u1", base64.StdEncoding.EncodeToString([]byte("just some text")))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUploadImage_PutFailure(t *testing.T) {
	store := NewStore(&fakePutter{err: errors.New("access denied")}, "bucket", "us-east-1", "")
	_, err := store.UploadImage(context.Background(), "ids/u1", base64.StdEncoding.EncodeToString(pngHeader))
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrValidation))
}

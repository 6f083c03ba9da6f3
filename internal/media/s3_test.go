package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	key, err := ObjectKey(7, "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "dishes/7-"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	_, err = ObjectKey(7, "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploadDishImage(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	s := &S3Store{client: fake, bucket: "canteen", region: "eu-central-1"}

	link, err := s.UploadDishImage(context.Background(), 3, "image/jpeg", 4, strings.NewReader("jpeg"))
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "canteen", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "jpeg", fake.body)
	assert.Equal(t, "https://canteen.s3.eu-central-1.amazonaws.com/"+aws.ToString(fake.in.Key), link)
}

func TestUploadDishImage_Rejects(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	s := &S3Store{client: fake, bucket: "canteen", region: "eu-central-1"}
	ctx := context.Background()

	_, err := s.UploadDishImage(ctx, 3, "image/jpeg", MaxImageSize+1, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.UploadDishImage(ctx, 3, "text/plain", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Nil(t, fake.in)

	fake.err = errors.New("access denied")
	_, err = s.UploadDishImage(ctx, 3, "image/png", 1, strings.NewReader("x"))
	assert.Error(t, err)
}

func TestAllowedTypes(t *testing.T) {
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp"}, AllowedTypes())
}

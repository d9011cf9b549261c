package testsupport

import (
	"bytes"
	"io"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Fake keeps objects in memory, keyed by bucket and key. Only GetObject
// and PutObject are implemented.
type S3Fake struct {
	s3iface.S3API
	Objects map[[2]string][]byte
}

func NewS3Fake() *S3Fake {
	return &S3Fake{Objects: map[[2]string][]byte{}}
}

func (sf *S3Fake) GetObject(
	input *s3.GetObjectInput,
) (*s3.GetObjectOutput, error) {
	data, found := sf.Objects[[2]string{*input.Bucket, *input.Key}]
	if !found {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (sf *S3Fake) PutObject(
	input *s3.PutObjectInput,
) (*s3.PutObjectOutput, error) {
	var b bytes.Buffer
	if _, err := io.Copy(&b, input.Body); err != nil {
		return nil, err
	}
	sf.Objects[[2]string{*input.Bucket, *input.Key}] = b.Bytes()
	return &s3.PutObjectOutput{}, nil
}

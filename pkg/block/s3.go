package block

import (
	"bytes"
	"fmt"
	stdio "io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gosimple/slug"
	. "github.com/weberc2/blockfs/pkg/types"
)

// S3Device stores each block as its own object under
// `<volume-slug>/blocks/<index>`. Blocks that were never written read back
// as zeroes.
type S3Device struct {
	Client     s3iface.S3API
	Bucket     string
	prefix     string
	blockCount Block
}

func NewS3Device(
	client s3iface.S3API,
	bucket string,
	volume string,
	blockCount Block,
) *S3Device {
	return &S3Device{
		Client:     client,
		Bucket:     bucket,
		prefix:     slug.Make(volume),
		blockCount: blockCount,
	}
}

func (d *S3Device) Key(idx Block) string {
	return fmt.Sprintf("%s/blocks/%d", d.prefix, idx)
}

func (d *S3Device) BlockCount() Block { return d.blockCount }

func (d *S3Device) ReadBlock(idx Block, p *[BlockSize]byte) error {
	key := d.Key(idx)
	rsp, err := d.Client.GetObject(&s3.GetObjectInput{
		Bucket: &d.Bucket,
		Key:    &key,
	})
	if err != nil {
		if err, ok := err.(awserr.Error); ok {
			if err.Code() == s3.ErrCodeNoSuchKey {
				*p = [BlockSize]byte{}
				return nil
			}
		}
		return fmt.Errorf(
			"fetching block `%d` from `s3://%s/%s`: %w",
			idx,
			d.Bucket,
			key,
			err,
		)
	}
	defer rsp.Body.Close()

	if _, err := stdio.ReadFull(rsp.Body, p[:]); err != nil {
		return fmt.Errorf(
			"reading block `%d` from `s3://%s/%s`: %w",
			idx,
			d.Bucket,
			key,
			err,
		)
	}
	return nil
}

func (d *S3Device) WriteBlock(idx Block, p *[BlockSize]byte) error {
	key := d.Key(idx)
	if _, err := d.Client.PutObject(&s3.PutObjectInput{
		Bucket:        &d.Bucket,
		Key:           &key,
		Body:          bytes.NewReader(p[:]),
		ContentLength: aws.Int64(int64(BlockSize)),
	}); err != nil {
		return fmt.Errorf(
			"putting block `%d` to `s3://%s/%s`: %w",
			idx,
			d.Bucket,
			key,
			err,
		)
	}
	return nil
}

// Flush is a no-op; PutObject has already completed by the time WriteBlock
// returns.
func (d *S3Device) Flush() error { return nil }

package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/io"
	. "github.com/weberc2/blockfs/pkg/types"
)

// openDevice opens the configured device. With `create`, file images are
// created (or truncated) to the configured size and postgres volumes are
// cleared.
func openDevice(c *Config, create bool) (*block.CountingDevice, error) {
	switch c.Device {
	case deviceFile:
		if create {
			volume, err := io.CreateFile(
				c.Image,
				Byte(c.BlockCount)*BlockSize,
			)
			if err != nil {
				return nil, err
			}
			return block.NewCountingDevice(
				block.NewVolumeDevice(volume, c.BlockCount),
			), nil
		}

		volume, err := io.OpenFile(c.Image)
		if err != nil {
			return nil, err
		}
		size, err := volume.Size()
		if err != nil {
			volume.Close()
			return nil, err
		}
		return block.NewCountingDevice(
			block.NewVolumeDevice(volume, Block(size/BlockSize)),
		), nil

	case deviceS3:
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(c.S3Region),
		})
		if err != nil {
			return nil, fmt.Errorf("creating aws session: %w", err)
		}
		return block.NewCountingDevice(block.NewS3Device(
			s3.New(sess),
			c.S3Bucket,
			c.Volume,
			c.BlockCount,
		)), nil

	case devicePostgres:
		device, err := block.OpenEnv(c.Volume, c.BlockCount)
		if err != nil {
			return nil, err
		}
		if err := device.EnsureTable(); err != nil {
			device.Close()
			return nil, err
		}
		if create {
			if err := device.ClearVolume(); err != nil {
				device.Close()
				return nil, err
			}
		}
		return block.NewCountingDevice(device), nil

	default:
		return nil, fmt.Errorf("unsupported device `%s`", c.Device)
	}
}

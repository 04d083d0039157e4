package minio

import (
	"context"
	"net/url"
	"time"
)

// MaxPresignExpiry is the longest validity S3 accepts for a presigned URL
const MaxPresignExpiry = 7 * 24 * time.Hour

// PresignedGetObject generates a presigned URL for HTTP GET operations
func (c *Client) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if err := validateTarget(bucketName, objectName); err != nil {
		return nil, WrapError("PresignedGetObject", err, bucketName, objectName)
	}
	if expiry <= 0 || expiry > MaxPresignExpiry {
		return nil, WrapErrorWithMessage("PresignedGetObject", ErrInvalidArgument, "expiry must be within (0, 7d]")
	}

	u, err := c.client.PresignedGetObject(ctx, bucketName, objectName, expiry, reqParams)
	if err != nil {
		return nil, WrapError("PresignedGetObject", err, bucketName, objectName)
	}
	return u, nil
}

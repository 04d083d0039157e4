package minio

import (
	"errors"
	"mime"
	"net"
	"path/filepath"
	"regexp"
	"strings"
)

// bucketNameRegex validates bucket names according to S3 rules
var bucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.\-]{1,61}[a-z0-9]$`)

// ValidateBucketName validates a bucket name according to S3 naming rules
func ValidateBucketName(bucketName string) error {
	switch {
	case bucketName == "":
		return errors.New("bucket name cannot be empty")
	case !bucketNameRegex.MatchString(bucketName):
		return errors.New("bucket name must be 3-63 lowercase letters, numbers, dots or hyphens")
	case strings.Contains(bucketName, ".."):
		return errors.New("bucket name cannot contain consecutive dots")
	case net.ParseIP(bucketName) != nil:
		return errors.New("bucket name cannot be formatted as an IP address")
	}
	return nil
}

// ValidateObjectName validates an object name
func ValidateObjectName(objectName string) error {
	switch {
	case objectName == "":
		return errors.New("object name cannot be empty")
	case len(objectName) > 1024:
		return errors.New("object name cannot exceed 1024 characters")
	case strings.Contains(objectName, "\x00"):
		return errors.New("object name cannot contain null bytes")
	}
	return nil
}

// DetectContentType guesses the content type from the file extension
func DetectContentType(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// SanitizeObjectName strips null bytes and collapses redundant slashes
func SanitizeObjectName(objectName string) string {
	objectName = strings.ReplaceAll(objectName, "\x00", "")
	objectName = strings.Trim(objectName, "/")
	for strings.Contains(objectName, "//") {
		objectName = strings.ReplaceAll(objectName, "//", "/")
	}
	return objectName
}

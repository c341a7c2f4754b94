// Copyright © 2018 One Concern

// Package storage provides the interface to remote backends holding content-addressed objects.
//
// This package supports the following backends:
//   - GCS (Google), identified as gcsh://bucket
//   - S3 (AWS), identified as s3h://bucket
//   - local file system, identified as localh://name
//
// Each content key maps to exactly one remote object, named after the key.
package storage

// Package site describes a deployment: which local directory goes to which
// bucket, and how it is filtered and transferred.
package site

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/studio1767/webotron/internal/etag"
	"github.com/studio1767/webotron/internal/s3io"
)

// MinChunkSize is the smallest part size S3 accepts for multipart uploads.
const MinChunkSize int64 = 5 * 1024 * 1024

const (
	DefaultWorkers    = 4
	DefaultIgnoreFile = ".webotronignore"
)

type ErrNoSuchSite struct {
	msg string
}

func (e *ErrNoSuchSite) Error() string {
	return e.msg
}

type Site struct {
	Bucket string
	Root   string
	Delete bool

	ChunkSize int64 `yaml:"chunk_size"`
	Workers   int

	IncludeExtensions []string `yaml:"include_extensions"`
	ExcludeExtensions []string `yaml:"exclude_extensions"`

	SkipDirs     []string `yaml:"skip_dirs"`
	SkipDirItems []string `yaml:"skip_dir_items"`

	IgnoreFile       string `yaml:"ignore_file"`
	SniffContentType bool   `yaml:"sniff_content_type"`
}

// Default returns a site with every tunable at its default.
func Default() *Site {
	return &Site{
		ChunkSize:  etag.DefaultChunkSize,
		Workers:    DefaultWorkers,
		IgnoreFile: DefaultIgnoreFile,
	}
}

// Load reads a site file. Values missing from the file keep their defaults.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ErrNoSuchSite{
				msg: fmt.Sprintf("no such site file: %s", path),
			}
		}
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Site, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse site: %w", err)
	}
	return s, nil
}

func (s *Site) Validate() error {
	if s.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if err := s3io.ValidateBucketName(s.Bucket); err != nil {
		return err
	}

	if s.Root == "" {
		return fmt.Errorf("root directory is required")
	}

	if s.ChunkSize < MinChunkSize {
		return fmt.Errorf("chunk size must be at least %d bytes", MinChunkSize)
	}

	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	return nil
}

// internal/region/file_other.go
//go:build !unix

package region

import "errors"

var errNoMapping = errors.New("region: file-backed regions need a unix host")

func OpenFile(path string) (*Region, error) { return nil, errNoMapping }

func MapFile(path string) (*Region, error) { return nil, errNoMapping }

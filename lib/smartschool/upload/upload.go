// Package upload implements the two step upload flow of the platform: files
// are first sent to a temporary upload directory and then claimed by a
// module (like mydoc) which moves them to their destination.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"smsc-client/lib/smartschool"
)

const (
	uploadDirectoryPath = "/upload/api/v1/get-upload-directory"
	uploadPath          = "/Upload/Upload/Index"
)

// Directory is the name of a temporary upload directory on the platform.
type Directory string

var ErrInvalidFileName = errors.New("invalid file name")

// NormalizeFileName turns name into a name the platform accepts: any
// leading directories are dropped and `*?"<>|` are replaced by `_`. Names
// containing `:` or starting or ending with `.` can't be fixed.
func NormalizeFileName(name string) (string, error) {
	i := strings.LastIndexAny(name, `/\`)
	if i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidFileName)
	}
	if strings.Contains(name, ":") {
		return "", fmt.Errorf("%w: %q contains a colon", ErrInvalidFileName, name)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return "", fmt.Errorf("%w: %q starts or ends with a dot", ErrInvalidFileName, name)
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`*?"<>|`, r) {
			return '_'
		}
		return r
	}, name), nil
}

// GetUploadDirectory asks the platform for a fresh upload directory.
func GetUploadDirectory(ctx context.Context, s *smartschool.Session) (Directory, error) {
	res, err := smartschool.Call[struct {
		UploadDir Directory `json:"uploadDir"`
	}](ctx, s, http.MethodGet, uploadDirectoryPath, nil)
	if err != nil {
		return "", err
	}
	if res.UploadDir == "" {
		return "", &smartschool.DecodeError{Path: uploadDirectoryPath, Err: errors.New("missing uploadDir")}
	}
	return res.UploadDir, nil
}

// UploadFile sends the contents of reader to dir under a normalized name and
// returns that name.
func UploadFile(ctx context.Context, s *smartschool.Session, dir Directory, name string, reader io.Reader) (string, error) {
	normalized, err := NormalizeFileName(name)
	if err != nil {
		return "", err
	}
	err = smartschool.Exec(ctx, s, http.MethodPost, uploadPath, smartschool.Multipart{
		Fields: map[string]string{"uploadDir": string(dir)},
		Files: []smartschool.MultipartFile{{
			Field:  "file",
			Name:   normalized,
			Reader: reader,
		}},
	})
	if err != nil {
		return "", err
	}
	return normalized, nil
}

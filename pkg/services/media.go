package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

// MediaFile is an uploaded image. Path is the value section content uses in
// image fields; UsedBy lists the pages whose sections reference it.
type MediaFile struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Size   int64    `json:"size"`
	MIME   string   `json:"mime,omitempty"`
	UsedBy []string `json:"used_by,omitempty"`
}

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaInUse       = errors.New("media file is referenced by sections")
)

func mediaDir() string {
	return filepath.Join(config.RepoPath, config.MediaFolder)
}

// mediaUsagePath is the site-absolute path of an uploaded file.
func mediaUsagePath(name string) string {
	return path.Join("/", filepath.ToSlash(config.MediaPublicFolder), name)
}

// ListMediaFiles lists the media folder, creating it if needed, with the
// pages referencing each file.
func ListMediaFiles() ([]MediaFile, error) {
	if err := os.MkdirAll(mediaDir(), 0755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(mediaDir())
	if err != nil {
		return nil, err
	}

	usage, err := mediaUsage()
	if err != nil {
		logger := log.WithComponent("media")
		logger.Warn().Err(err).Msg("media usage scan failed")
	}

	files := []MediaFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		p := mediaUsagePath(entry.Name())
		files = append(files, MediaFile{
			Name:   entry.Name(),
			Path:   p,
			Size:   info.Size(),
			UsedBy: usage[p],
		})
	}
	return files, nil
}

// SaveMediaFile stores an uploaded image under a timestamped name. The type
// is sniffed from the content; only image/* is accepted.
func SaveMediaFile(header *multipart.FileHeader) (*MediaFile, error) {
	if config.MediaMaxBytes > 0 && header.Size > config.MediaMaxBytes {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ErrUnsupportedMedia, config.MediaMaxBytes)
	}

	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	base := strings.ReplaceAll(filepath.Base(header.Filename), " ", "_")
	ext := filepath.Ext(base)
	if ext == "" {
		ext = mtype.Extension()
	}
	name := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, filepath.Ext(base)), time.Now().Unix(), ext)

	full := SafeJoin(config.RepoPath, config.MediaFolder, name)
	if full == "" {
		return nil, ErrInvalidPath
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, err
	}
	dst, err := os.Create(full)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return nil, err
	}

	return &MediaFile{
		Name: name,
		Path: mediaUsagePath(name),
		Size: header.Size,
		MIME: mtype.String(),
	}, nil
}

// DeleteMediaFile removes a file from the media folder unless a section
// still references it.
func DeleteMediaFile(name string) error {
	name = filepath.Base(name)
	full := SafeJoin(config.RepoPath, config.MediaFolder, name)
	if full == "" {
		return ErrInvalidPath
	}
	usage, err := mediaUsage()
	if err != nil {
		return err
	}
	if pages := usage[mediaUsagePath(name)]; len(pages) > 0 {
		return fmt.Errorf("%w: %s", ErrMediaInUse, strings.Join(pages, ", "))
	}
	return os.Remove(full)
}

// mediaUsage maps every media path found in section content to the pages
// using it.
func mediaUsage() (map[string][]string, error) {
	pages, err := GetPagesCache()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]string{}, nil
		}
		return nil, err
	}

	prefix := mediaUsagePath("") + "/"
	usage := make(map[string][]string)
	for _, summary := range pages {
		page, err := GetPage(summary.Path)
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, s := range page.Sections {
			collectStrings(s.Content, func(v string) {
				if strings.HasPrefix(v, prefix) && !seen[v] {
					seen[v] = true
					usage[v] = append(usage[v], page.Path)
				}
			})
		}
	}
	for _, refs := range usage {
		sort.Strings(refs)
	}
	return usage, nil
}

func collectStrings(value any, fn func(string)) {
	switch v := value.(type) {
	case string:
		fn(v)
	case map[string]any:
		for _, inner := range v {
			collectStrings(inner, fn)
		}
	case []any:
		for _, inner := range v {
			collectStrings(inner, fn)
		}
	}
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pjecz/portal-notarias/pkg/safestring"
)

var mediaTypes = map[string]string{
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var monthNames = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

const descriptionMaxLen = 50

// MediaTypeFromFilename returns the media type registered for name's extension.
func MediaTypeFromFilename(name string) (string, error) {
	ext := extension(name)
	mt, ok := mediaTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}
	return mt, nil
}

// MonthName returns the uppercase Spanish name of m.
func MonthName(m time.Month) string {
	return monthNames[m-1]
}

// Placement computes where one uploaded file goes:
// <base>/<yyyy>/<month>/<yyyy-mm-dd>-<DESCRIPTION>-<hashed id>.<ext>.
// Call SetContentType, then SetFilename, then Upload.
type Placement struct {
	BaseDirectory     string
	UploadDate        time.Time
	AllowedExtensions []string
	MonthInWord       bool

	extension   string
	contentType string
	filename    string
	key         string
	url         string
}

// SetContentType validates filename's extension against the allowed set.
func (p *Placement) SetContentType(filename string) error {
	ext := extension(filename)
	mt, ok := mediaTypes[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}
	if !slices.Contains(p.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrNotAllowedExtension, ext)
	}

	p.extension = ext
	p.contentType = mt
	return nil
}

// SetFilename builds the stored file name and key from the hashed id and description.
func (p *Placement) SetFilename(hashedID, description string) error {
	if p.extension == "" {
		return ErrUnknownExtension
	}
	if hashedID == "" {
		return ErrEmptyKey
	}

	pieces := []string{p.UploadDate.Format(time.DateOnly)}
	slug := safestring.String(description, safestring.Options{MaxLen: -1})
	if slug != "" {
		slug = strings.Join(strings.Fields(slug), "-")
		slug = strings.NewReplacer("/", "-", "(", "", ")", "").Replace(slug)
		if len(slug) > descriptionMaxLen {
			slug = strings.TrimRight(slug[:descriptionMaxLen], "-.")
		}
		pieces = append(pieces, slug)
	}
	pieces = append(pieces, hashedID)

	p.filename = strings.Join(pieces, "-") + "." + p.extension

	month := fmt.Sprintf("%02d", int(p.UploadDate.Month()))
	if p.MonthInWord {
		month = MonthName(p.UploadDate.Month())
	}
	p.key = path.Join(
		strings.Trim(p.BaseDirectory, "/"),
		p.UploadDate.Format("2006"),
		month,
		p.filename,
	)
	return nil
}

// Upload stores data at the computed key and records the resulting URL.
func (p *Placement) Upload(ctx context.Context, sys System, data []byte) error {
	if p.key == "" {
		return ErrEmptyKey
	}

	u, err := sys.Upload(ctx, p.key, bytes.NewReader(data), p.contentType)
	if err != nil {
		return err
	}
	p.url = u
	return nil
}

// Filename returns the stored file name.
func (p *Placement) Filename() string { return p.filename }

// Key returns the full blob key.
func (p *Placement) Key() string { return p.key }

// URL returns the public URL after a successful Upload.
func (p *Placement) URL() string { return p.url }

func extension(name string) string {
	ext := path.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

package forms

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxFileSize is the attachment size limit when none is configured.
const DefaultMaxFileSize int64 = 20 << 20

// DefaultExtensions are the accepted attachment types.
var DefaultExtensions = []string{"pdf", "jpg", "jpeg", "png", "doc", "docx"}

// AttachmentPolicy decides whether a document may be accepted. It is
// consulted with the metadata Telegram reports, before any download.
type AttachmentPolicy struct {
	Extensions []string
	MaxSize    int64
}

// DefaultPolicy returns the policy with default extensions and size limit.
func DefaultPolicy() AttachmentPolicy {
	return AttachmentPolicy{Extensions: DefaultExtensions, MaxSize: DefaultMaxFileSize}
}

// Check validates a file name and size against the policy.
func (p AttachmentPolicy) Check(name string, size int64) error {
	ext := FileType(name)
	if ext == "" || !p.allowed(ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	max := p.MaxSize
	if max <= 0 {
		max = DefaultMaxFileSize
	}
	if size > max {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, max)
	}
	return nil
}

func (p AttachmentPolicy) allowed(ext string) bool {
	list := p.Extensions
	if len(list) == 0 {
		list = DefaultExtensions
	}
	for _, e := range list {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

// FileType returns the lower-case extension of name without the dot.
func FileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// StoredName returns the on-disk name for an uploaded document:
// "<unix>_<sanitized name>".
func StoredName(name string, now time.Time) string {
	return fmt.Sprintf("%d_%s", now.Unix(), SanitizeFileName(name))
}

// PhotoName returns the on-disk name for a photo, which carries no name.
func PhotoName(now time.Time) string {
	return fmt.Sprintf("photo_%d.jpg", now.Unix())
}

// SanitizeFileName strips directories from name and replaces every rune
// that is not a letter, digit, dot, dash or underscore with '_'.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

package media

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/worklink-dev/worklink/internal/apperr"
)

// Entity categories media can belong to.
const (
	CategoryPosting     = "posting"
	CategoryApplication = "application"
	CategoryAssignment  = "assignment"
	CategoryChat        = "chat"
)

// Object is a stored media record. OwnerID is the id of the entity the file
// belongs to (posting, application, assignment or chat thread).
type Object struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	OwnerID   string    `json:"owner_id"`
	Ext       string    `json:"ext"`
	Path      string    `json:"path"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref identifies a stored object for batch deletion.
type Ref struct {
	ID  string
	Ext string
}

// Rule is the validation policy for one category.
type Rule struct {
	Extensions []string
	MaxSize    int64
}

// DefaultRules is the per-category allow-list and size ceiling.
var DefaultRules = map[string]Rule{
	CategoryPosting:     {Extensions: []string{"jpg", "jpeg", "png", "gif", "pdf"}, MaxSize: 10 << 20},
	CategoryApplication: {Extensions: []string{"jpg", "jpeg", "png", "pdf"}, MaxSize: 5 << 20},
	CategoryAssignment:  {Extensions: []string{"jpg", "jpeg", "png", "gif", "pdf"}, MaxSize: 10 << 20},
	CategoryChat:        {Extensions: []string{"jpg", "jpeg", "png", "gif", "pdf", "mp4", "mov", "doc", "docx"}, MaxSize: 20 << 20},
}

var mimeByExt = map[string]string{
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png", "gif": "image/gif",
	"pdf": "application/pdf", "mp4": "video/mp4", "mov": "video/quicktime",
	"doc": "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Validate checks filename extension and size against the category rule and
// returns the normalized extension.
func Validate(rules map[string]Rule, filename string, size int64, category string) (string, error) {
	rule, ok := rules[category]
	if !ok {
		return "", apperr.Invalidf("unknown media category %q", category)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "", apperr.Invalid("filename has no extension")
	}
	allowed := false
	for _, e := range rule.Extensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperr.Invalidf("extension %q not allowed for %s media", ext, category)
	}
	if size <= 0 {
		return "", apperr.Invalid("empty file")
	}
	if size > rule.MaxSize {
		return "", apperr.Invalidf("file exceeds %d byte limit for %s media", rule.MaxSize, category)
	}
	return ext, nil
}

// MimeFor returns the content type for a known extension.
func MimeFor(ext string) string {
	if m, ok := mimeByExt[ext]; ok {
		return m
	}
	return "application/octet-stream"
}

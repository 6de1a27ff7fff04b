package docsystem

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is the display classification derived from a file's extension.
type FileType string

const (
	FileTypeDocument FileType = "document"
	FileTypeImage    FileType = "image"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeOther    FileType = "other"
)

// AllFileTypes lists every classification in display order.
var AllFileTypes = []FileType{FileTypeDocument, FileTypeImage, FileTypeVideo, FileTypeAudio, FileTypeOther}

var extensionTypes = map[string]FileType{
	"pdf": FileTypeDocument, "doc": FileTypeDocument, "docx": FileTypeDocument,
	"txt": FileTypeDocument, "xls": FileTypeDocument, "xlsx": FileTypeDocument,
	"csv": FileTypeDocument, "rtf": FileTypeDocument, "ods": FileTypeDocument,
	"ppt": FileTypeDocument, "odp": FileTypeDocument, "md": FileTypeDocument,
	"html": FileTypeDocument, "htm": FileTypeDocument, "epub": FileTypeDocument,
	"pages": FileTypeDocument, "fig": FileTypeDocument, "psd": FileTypeDocument,
	"ai": FileTypeDocument, "indd": FileTypeDocument, "xd": FileTypeDocument,
	"sketch": FileTypeDocument, "afdesign": FileTypeDocument, "afphoto": FileTypeDocument,
	"jpg": FileTypeImage, "jpeg": FileTypeImage, "png": FileTypeImage,
	"gif": FileTypeImage, "bmp": FileTypeImage, "svg": FileTypeImage, "webp": FileTypeImage,
	"mp4": FileTypeVideo, "avi": FileTypeVideo, "mov": FileTypeVideo,
	"mkv": FileTypeVideo, "webm": FileTypeVideo,
	"mp3": FileTypeAudio, "wav": FileTypeAudio, "ogg": FileTypeAudio, "flac": FileTypeAudio,
}

// ClassifyFile returns the lowercase extension (without dot) and display type
// for a file name.
func ClassifyFile(name string) (FileType, string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return FileTypeOther, ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t, ext
	}
	return FileTypeOther, ext
}

// File is an uploaded blob plus its metadata record.
type File struct {
	ID               string    `json:"id" db:"id" bson:"_id"`
	Name             string    `json:"name" db:"name" bson:"name"`
	OwnerID          string    `json:"owner_id" db:"owner_id" bson:"owner_id"`
	AccountID        string    `json:"account_id" db:"account_id" bson:"account_id"`
	FolderID         *string   `json:"folder_id" db:"folder_id" bson:"folder_id"` // NULL = root level
	Size             int64     `json:"size" db:"size" bson:"size"`
	BlobRef          string    `json:"-" db:"blob_ref" bson:"blob_ref"`
	URL              string    `json:"url,omitempty" db:"-" bson:"-"` // Computed from BlobRef on read
	Users            []string  `json:"users" db:"users" bson:"users"`
	Type             FileType  `json:"type" db:"type" bson:"type"`
	Extension        string    `json:"extension" db:"extension" bson:"extension"`
	IsSystemResource bool      `json:"is_system_resource" db:"is_system_resource" bson:"is_system_resource"`
	CreatedAt        time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// SharedWith reports whether email is in the file's share list.
func (f *File) SharedWith(email string) bool {
	return containsEmail(f.Users, email)
}

// UsageBucket aggregates storage for one file type.
type UsageBucket struct {
	Size       int64      `json:"size"`
	LatestDate *time.Time `json:"latest_date"`
}

// Usage summarizes an account's storage consumption.
type Usage struct {
	Buckets map[FileType]UsageBucket `json:"buckets"`
	Used    int64                    `json:"used"`
	All     int64                    `json:"all"`
}

// Package blob provides object storage for raw document files on top of
// MongoDB GridFS. Objects are addressed by name; uploading an existing name
// replaces the previous content.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// URLScheme prefixes object URLs returned by the store.
const URLScheme = "gridfs"

// ErrNotFound is returned when a named object does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Object describes a stored file.
type Object struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store persists named binary objects in a GridFS bucket.
type Store struct {
	bucket     *gridfs.Bucket
	bucketName string
}

// NewStore creates a Store backed by the given database and bucket name.
func NewStore(db *mongo.Database, bucketName string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("blob: database is nil")
	}
	if bucketName == "" {
		bucketName = "fs"
	}

	bucket, err := gridfs.NewBucket(db, mongoopts.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("blob: create bucket: %w", err)
	}

	return &Store{bucket: bucket, bucketName: bucketName}, nil
}

// Upload stores the content under name, replacing any existing object with
// the same name, and returns the stored object's metadata.
func (s *Store) Upload(ctx context.Context, name string, r io.Reader, contentType string) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("blob: object name is empty")
	}

	// Remove previous versions so the name stays unique.
	if err := s.deleteByName(ctx, name); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	uploadOpts := mongoopts.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	id, err := s.bucket.UploadFromStream(name, r, uploadOpts)
	if err != nil {
		return nil, fmt.Errorf("blob: upload %s: %w", name, err)
	}

	file, err := s.findFile(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	return s.toObject(file), nil
}

// Download returns a reader over the named object's content along with its
// metadata. The caller must close the reader.
func (s *Store) Download(ctx context.Context, name string) (io.ReadCloser, *Object, error) {
	file, err := s.findFile(ctx, bson.M{"filename": name})
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("blob: download %s: %w", name, err)
	}
	return stream, s.toObject(file), nil
}

// Delete removes the named object. It returns ErrNotFound when no object
// with that name exists.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.deleteByName(ctx, name)
}

// List returns metadata for every stored object, most recent first.
func (s *Store) List(ctx context.Context) ([]*Object, error) {
	findOpts := mongoopts.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	cursor, err := s.bucket.FindContext(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("blob: list: %w", err)
	}
	defer cursor.Close(ctx)

	var objects []*Object
	for cursor.Next(ctx) {
		var file gridfs.File
		if err := cursor.Decode(&file); err != nil {
			return nil, fmt.Errorf("blob: decode file document: %w", err)
		}
		objects = append(objects, s.toObject(&file))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("blob: list cursor: %w", err)
	}
	return objects, nil
}

// Exists reports whether a named object is stored.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.findFile(ctx, bson.M{"filename": name})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// URL returns the canonical URL for a named object in this store.
func (s *Store) URL(name string) string {
	return BuildURL(s.bucketName, name)
}

func (s *Store) deleteByName(ctx context.Context, name string) error {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": name})
	if err != nil {
		return fmt.Errorf("blob: find %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	found := false
	for cursor.Next(ctx) {
		var file gridfs.File
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("blob: decode file document: %w", err)
		}
		if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("blob: delete %s: %w", name, err)
		}
		found = true
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("blob: delete cursor: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findFile(ctx context.Context, filter bson.M) (*gridfs.File, error) {
	findOpts := mongoopts.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}}).SetLimit(1)
	cursor, err := s.bucket.FindContext(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("blob: find: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("blob: find cursor: %w", err)
		}
		return nil, ErrNotFound
	}

	var file gridfs.File
	if err := cursor.Decode(&file); err != nil {
		return nil, fmt.Errorf("blob: decode file document: %w", err)
	}
	return &file, nil
}

func (s *Store) toObject(file *gridfs.File) *Object {
	obj := &Object{
		Name:       file.Name,
		URL:        s.URL(file.Name),
		Size:       file.Length,
		UploadedAt: file.UploadDate,
	}
	if len(file.Metadata) > 0 {
		var meta struct {
			ContentType string `bson:"contentType"`
		}
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil {
			obj.ContentType = meta.ContentType
		}
	}
	return obj
}

// BuildURL returns the canonical URL for an object in a bucket.
func BuildURL(bucket, name string) string {
	return fmt.Sprintf("%s://%s/%s", URLScheme, bucket, name)
}

// ParseURL splits a blob URL into bucket and object name.
func ParseURL(raw string) (bucket, name string, err error) {
	prefix := URLScheme + "://"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", fmt.Errorf("blob: invalid url %q", raw)
	}
	rest := strings.TrimPrefix(raw, prefix)
	idx := strings.Index(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("blob: invalid url %q", raw)
	}
	return rest[:idx], rest[idx+1:], nil
}

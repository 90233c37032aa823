package minio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

var logoExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// LogoContentType resolves the MIME type of an upload.  A declared type that
// is empty or generic is replaced by sniffing the bytes.
func LogoContentType(declared string, data []byte) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data[:min(512, len(data))])
	}
	if _, ok := logoExtensions[ct]; !ok {
		return "", errors.New(errors.ErrCodeLogoUnsupportedType, "logo must be PNG, JPEG or WebP").
			WithDetail("content_type=" + ct)
	}
	return ct, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Logo store
// ─────────────────────────────────────────────────────────────────────────────

// LogoStore keeps uploaded logo images under logos/<design>/<digest>.<ext>.
// Identical uploads to one design share an object.
type LogoStore struct {
	client *Client
	logger logging.Logger
}

func NewLogoStore(client *Client, log logging.Logger) *LogoStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &LogoStore{client: client, logger: log.Named("logo-store")}
}

// Put uploads a logo image and returns its reference.
func (s *LogoStore) Put(ctx context.Context, design customization.DesignID, contentType string, data []byte) (customization.ImageRef, error) {
	if len(data) == 0 {
		return "", errors.InvalidParam("logo image is empty")
	}
	ct, err := LogoContentType(contentType, data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	key := "logos/" + string(design) + "/" + hex.EncodeToString(sum[:16]) + "." + logoExtensions[ct]

	_, err = s.client.api.PutObject(ctx, s.client.LogoBucket(), key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: ct})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "logo upload failed")
	}
	s.logger.Debug("Logo stored", logging.DesignID(string(design)), logging.String("key", key))
	return customization.ImageRef(key), nil
}

// Open streams a stored logo.  It satisfies render.ImageSource.
func (s *LogoStore) Open(ctx context.Context, ref customization.ImageRef) (io.ReadCloser, error) {
	rc, err := s.client.api.OpenObject(ctx, s.client.LogoBucket(), string(ref))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.New(errors.ErrCodeLogoNotFound, "logo image not found").WithDetail("ref=" + string(ref))
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "logo download failed")
	}
	return rc, nil
}

// DeleteDesign removes every logo stored for a design and returns the number
// of objects removed.
func (s *LogoStore) DeleteDesign(ctx context.Context, design customization.DesignID) (int, error) {
	prefix := "logos/" + string(design) + "/"
	n := 0
	for obj := range s.client.api.ListObjects(ctx, s.client.LogoBucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return n, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "failed to list logos")
		}
		if err := s.client.api.RemoveObject(ctx, s.client.LogoBucket(), obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return n, errors.Wrap(err, errors.ErrCodeStorageError, "failed to remove logo")
		}
		n++
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Texture store
// ─────────────────────────────────────────────────────────────────────────────

// TextureStore caches encoded base textures under textures/<digest>.<ext>.
type TextureStore struct {
	client *Client
	logger logging.Logger
}

func NewTextureStore(client *Client, log logging.Logger) *TextureStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TextureStore{client: client, logger: log.Named("texture-store")}
}

// TextureKey is the object key of an encoded texture.
func TextureKey(digest, ext string) string {
	return "textures/" + digest + "." + ext
}

// Put uploads data under key unless the object already exists.  It reports
// whether an upload happened.
func (s *TextureStore) Put(ctx context.Context, key, contentType string, data []byte) (bool, error) {
	_, err := s.client.api.StatObject(ctx, s.client.TextureBucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return false, nil
	}
	if !isNoSuchKey(err) {
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "texture stat failed")
	}
	_, err = s.client.api.PutObject(ctx, s.client.TextureBucket(), key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType, CacheControl: "public, max-age=31536000, immutable"})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "texture upload failed")
	}
	s.logger.Debug("Texture stored", logging.String("key", key), logging.Int("bytes", len(data)))
	return true, nil
}

// URL presigns a texture download.
func (s *TextureStore) URL(ctx context.Context, key string) (string, error) {
	return s.client.PresignGet(ctx, s.client.TextureBucket(), key, 0)
}

//Personal.AI order the ending

package storage // import "github.com/liber-hq/liber/storage"

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/util"
)

// Storage persists uploaded blobs and hands back a path usable by the rest
// of the system.
type Storage interface {
	// StoreFile writes the reader's content and returns the stored path.
	StoreFile(reader io.Reader, fileName string) (string, error)
	// Remove deletes a stored file.
	Remove(path string) error
}

// LocalStorage keeps ebook files and covers on local disk under the data
// directory, in per-kind subdirectories with uuid-prefixed names to dodge
// collisions.
type LocalStorage struct {
	// Kind is the subdirectory under the data dir, e.g. "books" or "covers".
	Kind string
}

func NewLocalStorage(kind string) *LocalStorage {
	return &LocalStorage{Kind: kind}
}

func (s *LocalStorage) StoreFile(reader io.Reader, fileName string) (string, error) {
	dir := filepath.Join(config.Opts.Data, s.Kind)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "failed to create storage directory")
	}

	filePath := filepath.Join(dir, util.GenUUID()+filepath.Ext(fileName))
	filePath = util.GenerateNewFileName(filePath)

	outFile, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create file")
	}
	defer outFile.Close()

	// Copy data to the file and calculate the hash
	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(outFile, hash), reader); err != nil {
		os.Remove(filePath)
		return "", errors.Wrap(err, "failed to write file")
	}

	fileHash := hex.EncodeToString(hash.Sum(nil))
	log.Debug("Stored file", zap.String("path", filePath), zap.String("hash", fileHash))

	return filePath, nil
}

func (s *LocalStorage) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove file")
	}
	return nil
}

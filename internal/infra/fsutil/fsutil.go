package fsutil

import (
	"errors"
	"io/fs"
	"os"
)

// FS — то, что ядру нужно от файловой системы при уборке картинок.
type FS interface {
	Exists(path string) bool
	Remove(path string) error
	// RemoveDirIfEmpty удаляет каталог, только если он пуст.
	RemoveDirIfEmpty(dir string) error
}

type OS struct{}

func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) Remove(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (OS) RemoveDirIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(entries) > 0 {
		return nil
	}
	return os.Remove(dir)
}

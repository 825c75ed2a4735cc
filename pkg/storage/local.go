// Package storage manages the local directory that holds uploaded files.
package storage

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// Local is a file store rooted at a single directory. Stored names are
// generated with UUIDs, so concurrent uploads never collide.
type Local struct {
	dir     string
	urlBase string
}

// NewLocal creates the base directory if needed and returns the store.
func NewLocal(dir, urlBase string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: dir, urlBase: urlBase}, nil
}

// Dir returns the base directory of the store.
func (l *Local) Dir() string {
	return l.dir
}

// NombreAlmacenado derives a unique physical filename preserving the
// original extension.
func (l *Local) NombreAlmacenado(nombreOriginal string) string {
	return uuid.New().String() + filepath.Ext(nombreOriginal)
}

// RutaFisica returns the absolute on-disk path for a stored name.
func (l *Local) RutaFisica(nombreAlmacenado string) string {
	return filepath.Join(l.dir, nombreAlmacenado)
}

// URL returns the public path under which the stored file is served.
func (l *Local) URL(nombreAlmacenado string) string {
	return path.Join(l.urlBase, nombreAlmacenado)
}

// Guardar writes the contents of src under the given stored name and
// returns the number of bytes written.
func (l *Local) Guardar(src io.Reader, nombreAlmacenado string) (int64, error) {
	dst, err := os.Create(l.RutaFisica(nombreAlmacenado))
	if err != nil {
		return 0, err
	}
	defer dst.Close()
	return io.Copy(dst, src)
}

// Existe reports whether a physical path is present on disk.
func (l *Local) Existe(ruta string) bool {
	_, err := os.Stat(ruta)
	return err == nil
}

// Eliminar removes a physical path. A file that is already absent counts
// as removed.
func (l *Local) Eliminar(ruta string) error {
	err := os.Remove(ruta)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

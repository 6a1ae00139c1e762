package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

func writeZip(w io.Writer, manifest []byte, files []file) error {
	zw := zip.NewWriter(w)

	write := func(name string, data []byte) error {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		return err
	}

	if err := write(manifestName, manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	for _, f := range files {
		if err := write(f.name, f.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip: %w", err)
	}
	return nil
}

func readZip(data []byte, sink func(name string, content []byte) error) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	// Insecure names are still listed; safeJoin filters them.
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Name, err)
		}
		if err := sink(f.Name, content); err != nil {
			return err
		}
	}
	return nil
}

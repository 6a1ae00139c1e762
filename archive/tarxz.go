package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

var (
	xzNewWriter = xz.NewWriter
	xzNewReader = xz.NewReader
)

func writeToTar(tw *tar.Writer, name string, data []byte, mode int64) error {
	header := &tar.Header{
		Name:     name,
		Mode:     mode,
		Size:     int64(len(data)),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

func writeTarXz(w io.Writer, manifest []byte, files []file) error {
	xw, err := xzNewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	if err := writeToTar(tw, manifestName, manifest, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	for _, f := range files {
		mode := int64(f.mode)
		if mode == 0 {
			mode = 0644
		}
		if err := writeToTar(tw, f.name, f.data, mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("failed to finish xz stream: %w", err)
	}
	return nil
}

func readTarXz(data []byte, sink func(name string, content []byte) error) error {
	xr, err := xzNewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	tr := tar.NewReader(xr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: failed to read tar header: %v", ErrCorrupt, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, header.Name, err)
		}
		if err := sink(header.Name, content); err != nil {
			return err
		}
	}
}

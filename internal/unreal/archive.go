package unreal

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
)

// Archiver compresses one directory into one archive file.
type Archiver interface {
	Archive(ctx context.Context, sourceDir, archivePath string) error
}

// SevenZip shells out to 7z. The archive keeps the source directory as its
// top-level entry.
type SevenZip struct {
	Invoker *tools.Invoker
	Binary  string
}

func (s SevenZip) Archive(ctx context.Context, sourceDir, archivePath string) error {
	binary := s.Binary
	if binary == "" {
		binary = "7z"
	}
	return s.Invoker.Stream(ctx, binary, "a", archivePath, sourceDir, "-bt")
}

// NativeZip writes the archive in-process, laid out the same way 7z does.
type NativeZip struct{}

func (NativeZip) Archive(ctx context.Context, sourceDir, archivePath string) (err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", archivePath, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(out)
	base := filepath.Dir(sourceDir)
	walkErr := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("zip %s: %w", sourceDir, walkErr)
	}
	return zw.Close()
}

// Subdirectories lists the immediate child directories of root in lexical order.
func Subdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Compress archives every immediate subdirectory of outDir into
// zipDir/<name>.zip and returns the archive paths.
func Compress(ctx context.Context, logger zerolog.Logger, archiver Archiver, outDir, zipDir string) ([]string, error) {
	dirs, err := Subdirectories(outDir)
	if err != nil {
		return nil, fmt.Errorf("list packaged output %s: %w", outDir, err)
	}
	archives := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		zipPath := filepath.Join(zipDir, filepath.Base(dir)+".zip")
		logger.Info().Msgf("Zipping %s to %s", dir, zipPath)
		if err := archiver.Archive(ctx, dir, zipPath); err != nil {
			return archives, err
		}
		archives = append(archives, zipPath)
	}
	return archives, nil
}

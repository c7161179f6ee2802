// Package output delivers generated files to their target: stdout, a local
// file, or an object in S3-compatible storage. It also compares a freshly
// generated file against what a target already holds.
package output

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
	"github.com/koustreak/schemats/internal/logger"
)

// Stdout is the target name for standard output.
const Stdout = "-"

// Sink writes to and reads from targets.
type Sink struct {
	// Stdout receives output for the "-" target. Nil means os.Stdout.
	Stdout io.Writer

	// Store serves s3:// targets. Nil rejects them.
	Store filestore.Store
}

// Write delivers data to target. File targets are replaced atomically and
// their parent directories are created.
func (s *Sink) Write(ctx context.Context, target string, data []byte, contentType string) error {
	log := logger.FromContext(ctx)

	switch {
	case target == "" || target == Stdout:
		w := s.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return errs.Wrap(errs.ErrKindUnknown, "failed to write to stdout", err)
		}
		return nil

	case filestore.IsObjectURL(target):
		loc, err := filestore.ParseLocation(target)
		if err != nil {
			return err
		}
		if s.Store == nil {
			return errs.Newf(errs.ErrKindInvalidInput, "cannot write %s: no object store configured", target)
		}
		info, err := s.Store.Put(ctx, loc, data, contentType)
		if err != nil {
			return err
		}
		log.With().Str("target", target).Str("etag", info.ETag).Int("bytes", len(data)).Logger().Info("object written")
		return nil

	default:
		if err := writeFile(target, data); err != nil {
			return err
		}
		log.With().Str("target", target).Int("bytes", len(data)).Logger().Info("file written")
		return nil
	}
}

// Read returns the current content of target. A target that does not
// exist yet yields an ErrKindNotFound error.
func (s *Sink) Read(ctx context.Context, target string) ([]byte, error) {
	switch {
	case target == "" || target == Stdout:
		return nil, errs.New(errs.ErrKindInvalidInput, "cannot read back standard output: name a file or s3:// target")

	case filestore.IsObjectURL(target):
		loc, err := filestore.ParseLocation(target)
		if err != nil {
			return nil, err
		}
		if s.Store == nil {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "cannot read %s: no object store configured", target)
		}
		data, _, err := s.Store.Get(ctx, loc)
		return data, err

	default:
		data, err := os.ReadFile(target)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, target+" does not exist", err)
		}
		if err != nil {
			return nil, errs.Wrap(errs.KindFromFS(err), "failed to read "+target, err)
		}
		return data, nil
	}
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.KindFromFS(err), "failed to create "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errs.Wrap(errs.KindFromFS(err), "failed to create temp file in "+dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrKindUnknown, "failed to write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrKindUnknown, "failed to write "+path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errs.Wrap(errs.KindFromFS(err), "failed to write "+path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.Wrap(errs.KindFromFS(err), "failed to replace "+path, err)
	}
	return nil
}

// Package persist stores frames on disk under content-hashed file names, optionally together
// with the SQL query that produced them.
package persist

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/teltech/logger"
	"github.com/zpiroux/dsutils/entity"
)

const (
	DefaultPrefix = "raw_df"
	FrameExt      = ".frame"
	SQLExt        = ".sql"
)

var log *logger.Log

func init() {
	log = logger.New()
}

type Options struct {
	// Dir is the directory to write to, default is the current directory.
	Dir string

	// Prefix of the file names, default is "raw_df".
	Prefix string

	// SQL is the query that produced the frame. If set it is written to a .sql file next to
	// the frame file.
	SQL string

	// Now returns the time used in the file name, default is time.Now.
	Now func() time.Time
}

// Frame writes the frame, gob encoded and zstd compressed, to
//
//	<Dir>/<Prefix>_<timestamp>_<hash>.frame
//
// where hash is the hex encoded SHA-256 of the JSON form of the frame (see entity.Frame.JSON).
// It returns the path without extension, which is shared with the optional .sql file.
func Frame(f *entity.Frame, opts Options) (string, error) {
	if f == nil {
		return "", fmt.Errorf("%w: no frame to persist", entity.ErrInvalidFrame)
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	hash, err := Hash(f)
	if err != nil {
		return "", err
	}
	base := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s_%s", opts.Prefix, timestamp(opts.Now()), hash))

	if err = writeFrame(base+FrameExt, f); err != nil {
		return "", err
	}
	if opts.SQL != "" {
		if err = os.WriteFile(base+SQLExt, []byte(opts.SQL+"\n"), 0o644); err != nil {
			return "", fmt.Errorf("could not write SQL file: %w", err)
		}
	}
	log.Infof("persisted frame with %d rows and %d columns to %s", f.NumRows(), f.NumCols(), base+FrameExt)
	return base, nil
}

// timestamp formats t as ISO 8601 with microseconds, using '-' as separator in the time part
// to keep it usable in file names.
func timestamp(t time.Time) string {
	return fmt.Sprintf("%s-%06d", t.Format("2006-01-02T15-04-05"), t.Nanosecond()/1000)
}

// Hash returns the hex encoded SHA-256 of the JSON form of the frame.
func Hash(f *entity.Frame) (string, error) {
	data, err := f.JSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func writeFrame(path string, f *entity.Frame) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create frame file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(enc).Encode(f); err != nil {
		enc.Close()
		return fmt.Errorf("could not encode frame: %w", err)
	}
	return enc.Close()
}

// Load reads a frame written by Frame. The path can be given with or without the .frame
// extension. Frames breaking the invariants of entity.NewFrame give entity.ErrInvalidFrame.
func Load(path string) (*entity.Frame, error) {
	if !strings.HasSuffix(path, FrameExt) {
		path += FrameExt
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var f entity.Frame
	if err = gob.NewDecoder(dec).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: could not decode frame file %s: %v", entity.ErrInvalidFrame, path, err)
	}
	out, err := entity.NewFrame(f.Columns...)
	if err != nil {
		return nil, fmt.Errorf("frame file %s: %w", path, err)
	}
	return out, nil
}

// LoadSQL reads the SQL query persisted together with a frame, if any.
func LoadSQL(path string) (string, error) {
	path = strings.TrimSuffix(path, FrameExt) + SQLExt
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return strings.TrimSuffix(string(data), "\n"), err
}

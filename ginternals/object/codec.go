package object

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/reflogged/reflog/internal/errutil"
	"golang.org/x/xerrors"
)

// Deflate compresses src with zlib at the default level. The whole
// buffer is processed at once: objects are small enough to hold in
// memory, so no streaming surface is exposed.
func Deflate(src []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(src); err != nil {
		zw.Close() //nolint:errcheck // the write error is the one worth reporting
		return nil, xerrors.Errorf("could not zlib the data: %w", err)
	}
	// Close emits the final block and the adler32 checksum, so it has
	// to happen before the buffer is read
	if err := zw.Close(); err != nil {
		return nil, xerrors.Errorf("could not finalize the zlib stream: %w", err)
	}
	return buf.Bytes(), nil
}

// Inflate decompresses the zlib stream in r, reading it to EOF
func Inflate(r io.Reader) (data []byte, err error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, xerrors.Errorf("could not create zlib reader: %w", err)
	}
	defer errutil.Close(zr, &err)

	data, err = io.ReadAll(zr)
	if err != nil {
		return nil, xerrors.Errorf("could not inflate data: %w", err)
	}
	return data, nil
}

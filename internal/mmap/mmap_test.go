// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mmap // import "github.com/go-lpc/aewin/internal/mmap"

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestHandle(t *testing.T) {
	t.Run("nil-handle", func(t *testing.T) {
		var h *Handle

		_, err := h.ReadAt(nil, 0)
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid read-at error: %+v", err)
		}

		err = h.Close()
		if !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("invalid close error: %+v", err)
		}
	})
	t.Run("nil-data", func(t *testing.T) {
		var h Handle

		_, err := h.ReadAt(nil, 0)
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid read-at error: %+v", err)
		}

		err = h.Close()
		if err != nil {
			t.Fatalf("error closing nil-data handle: %+v", err)
		}
	})
}

func TestOpen(t *testing.T) {
	tmp := t.TempDir()

	t.Run("file", func(t *testing.T) {
		fname := filepath.Join(tmp, "data.raw")
		err := os.WriteFile(fname, []byte{0, 1, 2, 3}, 0644)
		if err != nil {
			t.Fatalf("could not create file: %+v", err)
		}

		h, err := Open(fname)
		if err != nil {
			t.Fatalf("could not mmap file: %+v", err)
		}
		defer h.Close()

		if got, want := h.Len(), 4; got != want {
			t.Fatalf("invalid len: got=%d, want=%d", got, want)
		}

		p := make([]byte, 3)
		n, err := h.ReadAt(p, 1)
		if err != nil {
			t.Fatalf("could not read-at: %+v", err)
		}
		if got, want := p[:n], []byte{1, 2, 3}; !bytes.Equal(got, want) {
			t.Fatalf("invalid read-at data: got=%v, want=%v", got, want)
		}

		n, err = h.ReadAt(p, 2)
		if !errors.Is(err, io.EOF) {
			t.Fatalf("invalid read-at error: %+v", err)
		}
		if got, want := n, 2; got != want {
			t.Fatalf("invalid read-at count: got=%d, want=%d", got, want)
		}

		_, err = h.ReadAt(nil, -1)
		if got, want := err.Error(), "mmap: invalid ReadAt offset -1"; got != want {
			t.Fatalf("invalid error: %+v", err)
		}

		err = h.Close()
		if err != nil {
			t.Fatalf("could not close handle: %+v", err)
		}

		_, err = h.ReadAt(p, 0)
		if !errors.Is(err, errClosed) {
			t.Fatalf("invalid read-at error after close: %+v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		fname := filepath.Join(tmp, "empty.raw")
		err := os.WriteFile(fname, nil, 0644)
		if err != nil {
			t.Fatalf("could not create file: %+v", err)
		}

		h, err := Open(fname)
		if err != nil {
			t.Fatalf("could not mmap empty file: %+v", err)
		}

		if got, want := h.Len(), 0; got != want {
			t.Fatalf("invalid len: got=%d, want=%d", got, want)
		}

		_, err = h.ReadAt(make([]byte, 1), 0)
		if !errors.Is(err, io.EOF) {
			t.Fatalf("invalid read-at error: %+v", err)
		}

		err = h.Close()
		if err != nil {
			t.Fatalf("could not close handle: %+v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Open(filepath.Join(tmp, "not-there.raw"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("invalid error: %+v", err)
		}
	})
}

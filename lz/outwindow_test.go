package lz

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

// recorder keeps every write separately.
type recorder struct {
	writes [][]byte
}

func (r *recorder) Write(p []byte) (int, error) {
	r.writes = append(r.writes, bytes.Clone(p))
	return len(p), nil
}

func TestOutWindowWrapAndCopy(t *testing.T) {
	var rec recorder
	var o OutWindow
	o.Create(16)
	assert.NilError(t, o.Init(&rec, false))

	for i := 0; i < 16; i++ {
		assert.NilError(t, o.PutByte(byte('a'+i)))
	}
	assert.Equal(t, len(rec.writes), 1)
	assert.DeepEqual(t, rec.writes[0], []byte("abcdefghijklmnop"))

	assert.NilError(t, o.CopyBlock(15, 10))
	assert.Equal(t, len(rec.writes), 1)
	assert.NilError(t, o.Flush())

	want := [][]byte{[]byte("abcdefghijklmnop"), []byte("abcdefghij")}
	if diff := cmp.Diff(want, rec.writes); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
}

func TestOutWindowOverlappingCopy(t *testing.T) {
	var out bytes.Buffer
	var o OutWindow
	o.Create(8)
	assert.NilError(t, o.Init(&out, false))
	assert.NilError(t, o.PutByte('x'))
	assert.NilError(t, o.PutByte('y'))
	assert.NilError(t, o.CopyBlock(1, 9))
	assert.Equal(t, o.GetByte(0), byte('x'))
	assert.Equal(t, o.GetByte(1), byte('y'))
	assert.NilError(t, o.ReleaseStream())
	assert.Equal(t, out.String(), "xyxyxyxyxyx")
}

func TestOutWindowTrain(t *testing.T) {
	var out bytes.Buffer
	var o OutWindow
	o.Create(8)
	assert.NilError(t, o.Init(&out, false))

	ok, err := o.Train(bytes.NewReader([]byte("0123456789ABCDEF")))
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, o.TrainSize, uint32(8))

	// The ring now holds "89ABCDEF", none of which is written out.
	assert.NilError(t, o.CopyBlock(7, 3))
	assert.NilError(t, o.Flush())
	assert.Equal(t, out.String(), "89A")

	ok, err = o.Train(bytes.NewReader([]byte("xyz")))
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, o.GetByte(2), byte('x'))
}

// shortSeeker claims a length beyond the data it can deliver.
type shortSeeker struct {
	*bytes.Reader
	length int64
}

func (s shortSeeker) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekEnd {
		return s.length, nil
	}
	return s.Reader.Seek(offset, whence)
}

func TestOutWindowTrainShortRead(t *testing.T) {
	var o OutWindow
	o.Create(8)
	assert.NilError(t, o.Init(io.Discard, false))

	ok, err := o.Train(shortSeeker{bytes.NewReader([]byte("abc")), 6})
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestOutWindowSolid(t *testing.T) {
	var first, second bytes.Buffer
	var o OutWindow
	o.Create(32)
	assert.NilError(t, o.Init(&first, false))
	for _, b := range []byte("solid") {
		assert.NilError(t, o.PutByte(b))
	}
	assert.NilError(t, o.Init(&second, true))
	assert.Equal(t, first.String(), "solid")

	assert.NilError(t, o.CopyBlock(4, 5))
	assert.NilError(t, o.ReleaseStream())
	assert.Equal(t, second.String(), "solid")

	assert.NilError(t, o.Init(&second, false))
	assert.Equal(t, o.pos, uint32(0))
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) / 2, nil }

func TestOutWindowWriteErrors(t *testing.T) {
	var o OutWindow
	o.Create(4)
	assert.NilError(t, o.Init(shortWriter{}, false))
	assert.NilError(t, o.PutByte(1))
	assert.ErrorIs(t, o.Flush(), io.ErrShortWrite)

	var orphan OutWindow
	orphan.Create(4)
	assert.NilError(t, orphan.PutByte(1))
	assert.ErrorIs(t, orphan.Flush(), ErrNoSink)
}

package kv

import (
	"github.com/DataDog/zstd"
	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/kelindar/binary"
)

// Encode serializes v into the binary format stored in the database.
func Encode[T any](v T) ([]byte, error) {
	bb, err := binary.Marshal(v)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot encode value")
	}
	return bb, nil
}

func Decode[T any](bb []byte) (T, error) {
	var v T
	if err := binary.Unmarshal(bb, &v); err != nil {
		return v, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot decode value")
	}
	return v, nil
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot compress value")
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot decompress value")
	}
	return bb, nil
}

// pack encodes and compresses v.
func pack[T any](v T) ([]byte, error) {
	bb, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Compress(bb)
}

func unpack[T any](bb []byte) (T, error) {
	raw, err := Decompress(bb)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](raw)
}

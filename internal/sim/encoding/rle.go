// Package encoding holds the wire codecs for observation payloads.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeView packs a semantic view grid into base64(varint pairs).
// Each pair is (tile_id, run_len); runs compress the large uniform
// patches a local view is mostly made of.
func EncodeView(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(ids) {
		id := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == id; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(id))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeView reverses EncodeView. The caller checks the expected
// side*side length; this only validates the varint stream itself.
func DecodeView(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for i := 0; i < len(raw); {
		id, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if id > 0xFFFF {
			return nil, fmt.Errorf("tile id too large: %d", id)
		}
		if run == 0 || run > 1<<20 {
			return nil, fmt.Errorf("bad run length: %d", run)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint16(id))
		}
	}
	return out, nil
}

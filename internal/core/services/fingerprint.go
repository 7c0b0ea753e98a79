package services

import (
	"strings"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

var fingerprintKey = []byte("mapxml-mapping-fingerprint-key!!")

// Fingerprint hashes the cells of rows. Line numbers are not part of the
// hash, so reformatting a table without changing its rows keeps the same
// fingerprint.
func Fingerprint(rows []domain.MappingRow) uint64 {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// Only returned for a key that is not 32 bytes long.
		panic(err)
	}
	for _, row := range rows {
		h.Write([]byte(strings.Join(row.Cells(), "\x1f"))) //nolint:errcheck // hash writes never fail
		h.Write([]byte{0x1e})                              //nolint:errcheck // hash writes never fail
	}
	return h.Sum64()
}

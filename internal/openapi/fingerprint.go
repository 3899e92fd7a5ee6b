package openapi

import (
	"github.com/minio/highwayhash"
)

var fingerprintKey = []byte("openapi-tools/source/fingerprint")

// Fingerprint hashes raw document bytes so a reload can tell whether the
// source changed.
func Fingerprint(data []byte) (uint64, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

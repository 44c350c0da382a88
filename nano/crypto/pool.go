package crypto

import (
	"hash"
	"sync"

	"github.com/expiredhotdog/camonano/types"
	"golang.org/x/crypto/blake2b"
)

var hasherPool sync.Pool

func init() {
	hasherPool.New = func() any {
		h, _ := blake2b.New256(nil)
		return h
	}
}

func GetBlake2b256Hasher() hash.Hash {
	return hasherPool.Get().(hash.Hash)
}

func PutBlake2b256Hasher(h hash.Hash) {
	h.Reset()
	hasherPool.Put(h)
}

// PooledBlake2b256 is Blake2b256 with hasher reuse, for scan hot paths.
func PooledBlake2b256(data ...[]byte) (result types.Hash) {
	h := GetBlake2b256Hasher()
	defer PutBlake2b256Hasher(h)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(result[:0])
	return
}

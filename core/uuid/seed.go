package uuid

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"os"
	"time"
)

// processSeed builds a 32-byte ChaCha8 seed unique to this process.
// crypto/rand supplies the bulk; the clock and pid are mixed into the tail
// so a failing entropy source still yields distinct seeds across processes.
func processSeed() [32]byte {
	var seed [32]byte
	_, err := cryptorand.Read(seed[:])

	now := uint64(time.Now().UnixNano())
	pid := uint64(os.Getpid())
	if err != nil {
		binary.LittleEndian.PutUint64(seed[0:8], now)
		binary.LittleEndian.PutUint64(seed[8:16], pid)
	}

	tail := binary.LittleEndian.Uint64(seed[24:])
	binary.LittleEndian.PutUint64(seed[24:], tail^now^(pid<<32))
	return seed
}

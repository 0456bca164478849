package uuid_test

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RRWM1rr0rB/uuidattr/core/uuid"
)

var v4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func BenchmarkGeneratorV4(b *testing.B) {
	g := uuid.NewGenerator()
	for i := 0; i < b.N; i++ {
		g.NewV4()
	}
}

func BenchmarkNewV4String(b *testing.B) {
	for i := 0; i < b.N; i++ {
		uuid.NewV4String()
	}
}

func TestNewV4Compliance(t *testing.T) {
	g := uuid.NewGenerator()
	for i := 0; i < 1000; i++ {
		v := g.NewV4String()
		require.Len(t, v, uuid.DashedLength)
		assert.Equal(t, byte('4'), v[14], "version nibble of %s", v)
		assert.Contains(t, "89ab", string(v[19]), "variant nibble of %s", v)
		assert.Regexp(t, v4Pattern, v)
	}
}

func TestNewV4Version(t *testing.T) {
	id := uuid.NewV4()
	assert.Equal(t, byte(4), id.Version())
	assert.Equal(t, byte(0x80), id[8]&0xc0)
}

func TestGeneratorSeededIsDeterministic(t *testing.T) {
	var seed [32]byte
	copy(seed[:], "uuidattr-deterministic-seed-0001")

	a := uuid.NewGenerator(uuid.WithSeed(seed))
	b := uuid.NewGenerator(uuid.WithSeed(seed))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.NewV4String(), b.NewV4String())
	}

	seed[0] ^= 0xff
	c := uuid.NewGenerator(uuid.WithSeed(seed))
	assert.NotEqual(t, a.NewV4String(), c.NewV4String())
}

// constSource returns the same word forever.
type constSource uint64

func (s constSource) Uint64() uint64 { return uint64(s) }

func TestGeneratorForcesVersionAndVariant(t *testing.T) {
	tests := []struct {
		name string
		word uint64
		want string
	}{
		{name: "AllZero", word: 0, want: "00000000-0000-4000-8000-000000000000"},
		{name: "AllOnes", word: ^uint64(0), want: "ffffffff-ffff-4fff-bfff-ffffffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := uuid.NewGenerator(uuid.WithSource(constSource(tt.word)))
			assert.Equal(t, tt.want, g.NewV4String())
		})
	}
}

func TestGeneratorConcurrentUse(t *testing.T) {
	g := uuid.NewGenerator()

	const workers, perWorker = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.NewV4String())
			}
			mu.Lock()
			for _, v := range local {
				seen[v] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker, "collision between concurrent generations")
}

func TestFormatWithDashesRoundTrip(t *testing.T) {
	g := uuid.NewGenerator()
	inputs := []string{
		"00000000000000000000000000000000",
		"0123456789abcdef0123456789abcdef",
		"ffffffffffffffffffffffffffffffff",
	}
	for i := 0; i < 200; i++ {
		inputs = append(inputs, g.NewV4().Compact())
	}

	for _, s := range inputs {
		out := uuid.FormatWithDashes(s)
		require.Len(t, out, uuid.DashedLength)
		for _, idx := range []int{8, 13, 18, 23} {
			assert.Equal(t, byte('-'), out[idx], "dash at %d in %s", idx, out)
		}
		assert.Equal(t, 4, strings.Count(out, "-"))
		assert.Equal(t, s, uuid.RemoveDashes(out))
	}
}

func TestFormatWithDashesPanicsOnWrongLength(t *testing.T) {
	assert.Panics(t, func() { uuid.FormatWithDashes("abc") })
	assert.Panics(t, func() { uuid.FormatWithDashes(strings.Repeat("a", 33)) })
}

func TestHasDashes(t *testing.T) {
	assert.True(t, uuid.HasDashes("a-b"))
	assert.False(t, uuid.HasDashes("ab"))
	assert.False(t, uuid.HasDashes(""))
}

func TestUUIDCompact(t *testing.T) {
	g := uuid.NewGenerator()
	id := g.NewV4()
	assert.Len(t, id.Compact(), uuid.CompactLength)
	assert.Equal(t, id.String(), uuid.FormatWithDashes(id.Compact()))
}

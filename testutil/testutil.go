package testutil

import (
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/PixelSnake/FuzzySearch/distance"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Product is a catalog entry with three text fields.
type Product struct {
	ID          uint64
	Brand       string
	Name        string
	Description string
}

var (
	brands = []string{"Acme", "Bosch", "Makita", "Stanley", "DeWalt", "Hilti", "Festool", "Ryobi"}
	nouns  = []string{"wrench", "drill", "hammer", "saw", "screwdriver", "pliers", "chisel", "sander", "grinder", "level"}
	adjs   = []string{"cordless", "heavy", "compact", "torque", "precision", "magnetic", "folding", "digital"}
	extras = []string{"steel", "blade", "battery", "case", "kit", "set", "pro", "mini", "handle", "grip"}
)

// Products returns n products with ids 1..n.
func (r *RNG) Products(n int) []Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Product, n)
	for i := range out {
		words := make([]string, 2+r.rand.Intn(4))
		for j := range words {
			words[j] = extras[r.rand.Intn(len(extras))]
		}
		out[i] = Product{
			ID:          uint64(i + 1),
			Brand:       brands[r.rand.Intn(len(brands))],
			Name:        adjs[r.rand.Intn(len(adjs))] + " " + nouns[r.rand.Intn(len(nouns))],
			Description: strings.Join(words, " "),
		}
	}
	return out
}

// Typo applies one random edit (substitution, deletion or insertion) to word.
// Words shorter than two runes are returned unchanged.
func (r *RNG) Typo(word string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	runes := []rune(word)
	if len(runes) < 2 {
		return word
	}
	i := r.rand.Intn(len(runes))
	c := rune('a' + r.rand.Intn(26))
	switch r.rand.Intn(3) {
	case 0:
		runes[i] = c
	case 1:
		runes = append(runes[:i], runes[i+1:]...)
	default:
		runes = append(runes[:i], append([]rune{c}, runes[i:]...)...)
	}
	return string(runes)
}

// ReferenceScore scores one record sequentially: the mean over terms of
// the smallest accepted distance to any token of any field. ok is false
// when a term is accepted by no token.
func ReferenceScore(fields [][]string, terms []string, c *distance.Computer) (float64, bool) {
	if len(terms) == 0 {
		return 0, false
	}
	var sum float64
	for _, term := range terms {
		best := math.Inf(1)
		for _, tokens := range fields {
			for _, tok := range tokens {
				d := c.Distance(tok, term)
				if c.Accepts(d, term) && d < best {
					best = d
				}
			}
		}
		if math.IsInf(best, 1) {
			return 0, false
		}
		sum += best
	}
	return sum / float64(len(terms)), true
}

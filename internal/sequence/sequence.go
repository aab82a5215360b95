// Package sequence issues human-readable, strictly increasing invoice numbers
// such as #MP0001.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

const (
	// DefaultPrefix is prepended to every invoice number.
	DefaultPrefix = "#MP"
	minDigits     = 4
)

// Seeder reports the highest sequence number already in use. It is consulted
// once, on the first Next after construction.
type Seeder func(ctx context.Context) (int, error)

// Allocator hands out sequence numbers. Next is serialized by an internal mutex,
// so a single Allocator may be shared; separate processes need their own
// coordination.
type Allocator struct {
	mu     sync.Mutex
	prefix string
	last   int
	seeded bool
	seed   Seeder
}

func New(seed Seeder) *Allocator {
	return &Allocator{prefix: DefaultPrefix, seed: seed}
}

// Next returns the next identifier, seeding from existing data on first use.
func (a *Allocator) Next(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.seeded {
		if a.seed != nil {
			highest, err := a.seed(ctx)
			if err != nil {
				return "", fmt.Errorf("seed invoice sequence: %w", err)
			}
			if highest > a.last {
				a.last = highest
			}
		}
		a.seeded = true
	}

	a.last++
	return Format(a.last), nil
}

// Format renders n with the default prefix, zero padded to at least four digits.
func Format(n int) string {
	return fmt.Sprintf("%s%0*d", DefaultPrefix, minDigits, n)
}

// Parse extracts the numeric part of an identifier such as #MP0042.
func Parse(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, DefaultPrefix)
	if !ok || len(digits) < minDigits {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxOf returns the largest sequence number among ids, ignoring foreign formats.
func MaxOf(ids []string) int {
	highest := 0
	for _, id := range ids {
		if n, ok := Parse(id); ok && n > highest {
			highest = n
		}
	}
	return highest
}

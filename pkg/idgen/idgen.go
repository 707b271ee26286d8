// Package idgen produces the short opaque identifiers assigned to every
// workflow entity.
package idgen

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Length is the fixed size of every generated identifier.
const Length = 13

// Generator produces a new identifier on each call.
type Generator func() string

// New returns a lowercase base36 token of Length characters drawn from a
// random UUID. Uniqueness is probabilistic and scoped to the process.
func New() string {
	u := uuid.New()
	token := new(big.Int).SetBytes(u[:]).Text(36)
	if len(token) < Length {
		token = strings.Repeat("0", Length-len(token)) + token
	}
	return token[len(token)-Length:]
}

// Sequence returns a deterministic Generator yielding prefix-1, prefix-2, ...
// It is not safe for concurrent use.
func Sequence(prefix string) Generator {
	var n int64
	return func() string {
		n++
		return prefix + "-" + strconv.FormatInt(n, 10)
	}
}

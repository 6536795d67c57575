package matching

import (
	"math/rand/v2"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
)

const (
	idPrefix     = "MATCH-"
	idSuffixLen  = 5
	base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewMatchID generates an id of the form MATCH-YYYYMMDD-XXXXX
func NewMatchID(now time.Time) kernel.MatchID {
	suffix := make([]byte, idSuffixLen)
	for i := range suffix {
		suffix[i] = base36Digits[rand.IntN(len(base36Digits))]
	}
	return kernel.MatchID(idPrefix + now.Format("20060102") + "-" + string(suffix))
}

package blocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues block identifiers on the client before creation.
type IDGenerator interface {
	NewBlockID() (string, error)
}

type timestampIDGenerator struct {
	clock func() time.Time
}

// NewTimestampIDGenerator returns a generator producing blk_<epochms>_<rand6>.
func NewTimestampIDGenerator(clock func() time.Time) IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &timestampIDGenerator{clock: clock}
}

func (g *timestampIDGenerator) NewBlockID() (string, error) {
	random, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	suffix := strings.ReplaceAll(random.String(), "-", "")[:6]
	return fmt.Sprintf("blk_%d_%s", g.clock().UnixMilli(), suffix), nil
}

package interfaces

import (
	"context"

	"github.com/ristryder/ts2ass/common"
)

// CueSink receives finalized cues in presentation order.
type CueSink interface {
	Close() error
	WriteCue(ctx context.Context, cue common.Cue) error
}

package mock

import "github.com/fwojciec/semjson"

var _ semjson.BlockLocator = (*BlockLocator)(nil)

// BlockLocator is a mock implementation of semjson.BlockLocator.
type BlockLocator struct {
	LocateBlockFn func(name, text string) (*semjson.Block, error)
}

func (l *BlockLocator) LocateBlock(name, text string) (*semjson.Block, error) {
	return l.LocateBlockFn(name, text)
}

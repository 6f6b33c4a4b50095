package queue

import "github.com/neo3gfx/graphicsurface/surferr"

func errInvalidArg(op string) error  { return surferr.New(op, surferr.InvalidArguments) }
func errNoConsumer(op string) error  { return surferr.New(op, surferr.NoConsumer) }
func errNoEntry(op string) error     { return surferr.New(op, surferr.NoEntry) }
func errInvalidOp(op string) error   { return surferr.New(op, surferr.InvalidOperating) }
func errOutOfRange(op string) error  { return surferr.New(op, surferr.OutOfRange) }
func errDisconnected(op string) error {
	return surferr.New(op, surferr.ConsumerDisconnected)
}
func errNoPermission(op string) error { return surferr.New(op, surferr.NoPermission) }

package stress

import (
	"context"

	"github.com/min1324/mpsc"
)

// AwaitEmpty waits for a node on a queue nobody pushes to.
func (r *Runner) AwaitEmpty(ctx context.Context) (*Report, error) {
	c, err := mpsc.New[item]().Consumer()
	if err != nil {
		return nil, err
	}
	rep := &Report{}
	_, err = r.await(ctx, c, rep)
	return rep, err
}

package edgemonitor

import (
	"context"

	"github.com/BertoldVdb/go-vgp/lineport"
	"github.com/BertoldVdb/go-vgp/pincatalog"
)

// WaitEdge watches pin until the first edge of kind and returns it. The watch
// is cancelled before returning. Without a deadline on ctx it waits forever.
func (m *Monitor) WaitEdge(ctx context.Context, pin pincatalog.PinID, kind lineport.Edge) (lineport.Edge, error) {
	fired := make(chan (lineport.Edge), 1)

	t, err := m.Watch(pin, kind, func(_ pincatalog.PinID, edge lineport.Edge) {
		select {
		case fired <- edge:
		default:
		}
	})
	if err != nil {
		return 0, err
	}
	defer t.Cancel()

	select {
	case edge := <-fired:
		return edge, nil

	case <-t.Done():
		select {
		case edge := <-fired:
			return edge, nil
		default:
		}
		if err := t.Err(); err != nil {
			return 0, err
		}
		return 0, ErrorClosed

	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

package executor

import (
	"context"
	"time"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
	toolx "github.com/tanpawarit/agentic-bank/agent/tool"
)

// Mock runs plans against the in-process banking action catalog.
type Mock struct {
	catalog *toolx.Catalog
	now     func() time.Time
}

var _ contractx.Executor = (*Mock)(nil)

func NewMock(catalog *toolx.Catalog) *Mock {
	if catalog == nil {
		catalog = toolx.NewCatalog()
	}
	return &Mock{catalog: catalog, now: time.Now}
}

func (m *Mock) Execute(ctx context.Context, plan contractx.Plan) (contractx.Outcome, error) {
	started := m.now()
	outcome, err := m.catalog.Execute(ctx, plan)
	if err != nil {
		return contractx.Outcome{}, err
	}
	outcome.Elapsed = m.now().Sub(started)
	return outcome, nil
}

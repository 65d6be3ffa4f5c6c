package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/store"
)

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveContext(ctx context.Context, ac *model.AnalysisContext) error {
	args := m.Called(ctx, ac)
	return args.Error(0)
}

func (m *mockStore) GetContext(ctx context.Context, id string) (*model.AnalysisContext, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AnalysisContext), args.Error(1)
}

func (m *mockStore) ListContexts(ctx context.Context, filter store.ContextFilter) ([]store.ContextSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.ContextSummary), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

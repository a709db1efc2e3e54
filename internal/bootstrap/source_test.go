package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-aggregator/internal/config"
)

func TestOpenSourceMock(t *testing.T) {
	cfg := config.Config{
		DataSource:    config.SourceMock,
		MockSeed:      7,
		MockDays:      10,
		MockCustomers: []string{"A", "B"},
	}

	store, err := OpenSource(context.Background(), cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, store.Len(), 2*10*2)

	customers, err := store.CustomerIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, customers)
}

func TestOpenSourceUnknown(t *testing.T) {
	_, err := OpenSource(context.Background(), config.Config{DataSource: "csv"})
	assert.Error(t, err)
}

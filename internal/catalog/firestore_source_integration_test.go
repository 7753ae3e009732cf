//go:build integration

package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/domain"
	"github.com/floorhouse/site/internal/platform/config"
	pfirestore "github.com/floorhouse/site/internal/platform/firestore"
)

func TestFirestoreSourceRoundTrip(t *testing.T) {
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pfirestore.NewClient(ctx, config.FirestoreConfig{ProjectID: "floorhouse-test", EmulatorHost: host})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	embedded, err := Load(ctx, EmbeddedSource())
	require.NoError(t, err)

	source := NewFirestoreSource(client)
	require.NoError(t, source.Publish(ctx, embedded))

	loaded, err := Load(ctx, source)
	require.NoError(t, err)

	for _, c := range domain.Collections() {
		want := embedded.Products(c)
		got := loaded.Products(c)
		require.Len(t, got, len(want), "collection %s", c)
		for i := range want {
			assert.Equal(t, want[i].SKU, got[i].SKU)
			assert.Equal(t, want[i].Slug, got[i].Slug)
			assert.True(t, want[i].Price.Equal(got[i].Price))
		}
	}
	assert.Len(t, loaded.Treatments(), len(embedded.Treatments()))

	// Drop one oak product, rename another SKU under the same slug and drop a
	// treatment, then publish again over the first copy.
	containers := make(map[domain.CollectionType]ProductContainer, len(domain.Collections()))
	for _, c := range domain.Collections() {
		containers[c] = ProductContainer{Products: embedded.Products(c)}
	}
	oak := containers[domain.CollectionOak].Products
	renamed := oak[1]
	renamed.SKU = "FLR-1002-R"
	containers[domain.CollectionOak] = ProductContainer{Products: append([]domain.Product{renamed}, oak[2:]...)}
	trimmed, err := NewStore(containers, TreatmentContainer{Treatments: embedded.Treatments()[1:]})
	require.NoError(t, err)

	require.NoError(t, source.Publish(ctx, trimmed))

	reloaded, err := Load(ctx, source)
	require.NoError(t, err)
	assert.Len(t, reloaded.Products(domain.CollectionOak), len(oak)-1)
	assert.Equal(t, "FLR-1002-R", reloaded.Products(domain.CollectionOak)[0].SKU)
	assert.Equal(t, embedded.ProductCount(domain.CollectionHyWood), reloaded.ProductCount(domain.CollectionHyWood))
	assert.Len(t, reloaded.Treatments(), len(embedded.Treatments())-1)
	_, ok := reloaded.Treatment(embedded.Treatments()[0].Slug)
	assert.False(t, ok)
}

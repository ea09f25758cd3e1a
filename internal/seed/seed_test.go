package seed

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/testsupport"
)

func TestRun_Idempotent(t *testing.T) {
	db := testsupport.NewDB(t)
	store := mysqlrepo.NewStore(db)
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := Run(ctx, store, log)
		require.NoError(t, err)
		assert.Equal(t, len(categories), res.Categories)
		assert.Equal(t, len(products), res.Products)
	}

	var n int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&n).Error)
	assert.Equal(t, int64(len(products)), n)
	require.NoError(t, db.Model(&domain.Category{}).Count(&n).Error)
	assert.Equal(t, int64(len(categories)), n)

	w, err := store.Wallets().Find(ctx)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, domain.MainWalletID, w.ID)
	assert.True(t, w.Balance.IsZero())
}

// internal/domain/supplier/service_test.go
package supplier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/domain/product"
	"github.com/your-org/pharmacy-backend/internal/domain/supplier"
	"github.com/your-org/pharmacy-backend/internal/domain/user"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"github.com/your-org/pharmacy-backend/internal/testutil"
)

func TestSupplierService(t *testing.T) {
	db := testutil.NewDB(t)
	svc := supplier.NewService(db)
	ctx := context.Background()
	pharmacist := testutil.Actor(user.RolePharmacist)

	t.Run("create and update", func(t *testing.T) {
		created, err := svc.Create(ctx, pharmacist, &supplier.SaveRequest{Name: "  MedSupply  ", Email: "orders@medsupply.com"})
		require.NoError(t, err)
		assert.Equal(t, "MedSupply", created.Name)

		updated, err := svc.Update(ctx, pharmacist, created.ID, &supplier.SaveRequest{Name: "MedSupply Ltd", Contact: "Ravi"})
		require.NoError(t, err)
		assert.Equal(t, "MedSupply Ltd", updated.Name)
		assert.Equal(t, "Ravi", updated.Contact)

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "MedSupply Ltd", got.Name)
	})

	t.Run("cashier cannot write", func(t *testing.T) {
		_, err := svc.Create(ctx, testutil.Actor(user.RoleCashier), &supplier.SaveRequest{Name: "Nope"})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Create(ctx, pharmacist, &supplier.SaveRequest{Name: "Bad", Email: "not-an-email"})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	t.Run("delete is blocked while products reference the supplier", func(t *testing.T) {
		s := testutil.CreateSupplier(t, db, "Busy Supplier")
		testutil.CreateProduct(t, db, s.ID, "Cetirizine", "Antihistamine", "1.00", "2.00", 5)
		testutil.CreateProduct(t, db, s.ID, "Loratadine", "Antihistamine", "1.00", "2.00", 5)

		err := svc.Delete(ctx, pharmacist, s.ID)
		assert.True(t, apperror.Is(err, apperror.KindBusiness))
		assert.Equal(t, "Cannot delete supplier. They have 2 associated products.", apperror.MessageOf(err))

		_, err = svc.GetByID(ctx, s.ID)
		assert.NoError(t, err)
	})

	t.Run("delete succeeds once the last product is gone", func(t *testing.T) {
		s := testutil.CreateSupplier(t, db, "Single Product Supplier")
		p := testutil.CreateProduct(t, db, s.ID, "Zinc", "Supplement", "1.00", "2.00", 5)

		err := svc.Delete(ctx, pharmacist, s.ID)
		assert.Equal(t, "Cannot delete supplier. They have 1 associated products.", apperror.MessageOf(err))

		require.NoError(t, product.NewService(db).DeleteProduct(ctx, pharmacist, p.ID))
		assert.NoError(t, svc.Delete(ctx, pharmacist, s.ID))
	})

	t.Run("delete unreferenced supplier", func(t *testing.T) {
		s := testutil.CreateSupplier(t, db, "Idle Supplier")
		require.NoError(t, svc.Delete(ctx, pharmacist, s.ID))

		_, err := svc.GetByID(ctx, s.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))

		err = svc.Delete(ctx, pharmacist, s.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		suppliers, err := svc.List(ctx)
		require.NoError(t, err)
		for i := 1; i < len(suppliers); i++ {
			assert.LessOrEqual(t, suppliers[i-1].Name, suppliers[i].Name)
		}
	})
}

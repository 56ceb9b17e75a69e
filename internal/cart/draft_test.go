package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/cart"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestDraft_QtyClamped(t *testing.T) {
	d := cart.NewDraft(cookie(), nil)
	require.Equal(t, 1, d.Qty())

	require.Equal(t, 1, d.AdjustQty(-1))
	require.Equal(t, 2, d.AdjustQty(1))
	require.Equal(t, 3, d.AdjustQty(5))
	require.Equal(t, 1, d.SetQty(-10))

	unbounded := cookie()
	unbounded.MaxOrder = 0
	d = cart.NewDraft(unbounded, nil)
	require.Equal(t, 50, d.SetQty(50))
}

func TestDraft_ToggleToppingIsSet(t *testing.T) {
	meses := domain.Topping{ID: "t2", Name: "Meses", Price: 2000}
	d := cart.NewDraft(cookie(), []domain.Topping{cheese(), meses})

	on, err := d.ToggleTopping("t1")
	require.NoError(t, err)
	require.True(t, on)
	on, err = d.ToggleTopping("t2")
	require.NoError(t, err)
	require.True(t, on)
	require.Equal(t, []domain.Topping{cheese(), meses}, d.Selected())

	on, err = d.ToggleTopping("t1")
	require.NoError(t, err)
	require.False(t, on)
	require.Equal(t, []domain.Topping{meses}, d.Selected())

	_, err = d.ToggleTopping("t9")
	require.ErrorIs(t, err, domain.ErrToppingNotEligible)
}

func TestDraft_TotalAndSubmit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newRecordingStorage())

	d := cart.NewDraft(cookie(), []domain.Topping{cheese()})
	d.AdjustQty(1)
	_, err := d.ToggleTopping("t1")
	require.NoError(t, err)
	require.Equal(t, int64(36000), d.Total())

	item, err := d.Submit(ctx, s)
	require.NoError(t, err)
	require.Equal(t, 2, item.Qty)
	require.Equal(t, int64(36000), s.Total())
}

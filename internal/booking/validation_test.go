package booking_test

import (
	"testing"

	"luxe-booking/internal/booking"
	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validContact = model.ContactInfo{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0000"}

func keys(errs booking.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for k := range errs {
		out = append(out, k)
	}
	return out
}

func TestValidateContact(t *testing.T) {
	t.Run("All fields missing", func(t *testing.T) {
		errs := booking.ValidateContact(model.ContactInfo{Name: "  ", Email: "", Phone: "\t"})
		assert.ElementsMatch(t, []string{booking.KeyName, booking.KeyEmail, booking.KeyPhone}, keys(errs))
		assert.Equal(t, "Name is required", errs[booking.KeyName])
	})

	t.Run("Valid", func(t *testing.T) {
		errs := booking.ValidateContact(validContact)
		assert.False(t, errs.HasErrors())
	})
}

func TestValidateSelection(t *testing.T) {
	t.Run("Empty ledger is refused before field checks", func(t *testing.T) {
		errs, err := booking.ValidateSelection(booking.NewLedger(), model.ContactInfo{})
		assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
		assert.Nil(t, errs)
	})

	t.Run("Blank second vip guest", func(t *testing.T) {
		vip := newOffering(model.CategoryVIP, 250)
		l := booking.Reduce(booking.NewLedger(), booking.SetQuantity{Offering: vip, Quantity: 2}, baseTime)
		l = booking.Reduce(l, booking.SetGuestName{OfferingID: vip.ID, Index: 0, Name: "Grace"}, baseTime)

		errs, err := booking.ValidateSelection(l, validContact)
		require.NoError(t, err)
		assert.Equal(t, booking.ValidationErrors{"guest-0-1": "Guest 2 name is required"}, errs)
	})

	t.Run("Standard lines do not need guest names", func(t *testing.T) {
		standard := newOffering(model.CategoryStandard, 100)
		l := booking.Reduce(booking.NewLedger(), booking.SetQuantity{Offering: standard, Quantity: 3}, baseTime)

		errs, err := booking.ValidateSelection(l, validContact)
		require.NoError(t, err)
		assert.False(t, errs.HasErrors())
	})

	t.Run("Guest keys use line index", func(t *testing.T) {
		standard := newOffering(model.CategoryStandard, 100)
		vip := newOffering(model.CategoryVIP, 250)
		l := booking.Reduce(booking.NewLedger(), booking.SetQuantity{Offering: standard, Quantity: 1}, baseTime)
		l = booking.Reduce(l, booking.SetQuantity{Offering: vip, Quantity: 1}, baseTime)
		l = booking.Reduce(l, booking.SetGuestName{OfferingID: vip.ID, Index: 0, Name: "   "}, baseTime)

		errs, err := booking.ValidateSelection(l, model.ContactInfo{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{booking.KeyName, booking.KeyEmail, booking.KeyPhone, "guest-1-0"}, keys(errs))
	})
}

func TestValidateVIPBooking(t *testing.T) {
	errs := booking.ValidateVIPBooking(0, validContact)
	assert.ElementsMatch(t, []string{booking.KeyGuestCount}, keys(errs))

	errs = booking.ValidateVIPBooking(2, validContact)
	assert.False(t, errs.HasErrors())
}

package booking_test

import (
	"testing"
	"time"

	"luxe-booking/internal/booking"
	"luxe-booking/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateWindow(t *testing.T) {
	start := baseTime
	end := baseTime.Add(48 * time.Hour)
	w := model.SalesWindow{Start: start, End: end}

	tests := []struct {
		name string
		now  time.Time
		want booking.WindowState
	}{
		{"Before start", start.Add(-time.Second), booking.WindowNotStarted},
		{"At start", start, booking.WindowActive},
		{"Inside", start.Add(time.Hour), booking.WindowActive},
		{"At end", end, booking.WindowActive},
		{"After end", end.Add(time.Second), booking.WindowEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.EvaluateWindow(w, tt.now))
		})
	}
}

func TestWindowStatusMessage(t *testing.T) {
	w := model.SalesWindow{Start: baseTime, End: baseTime.Add(time.Hour)}

	assert.Equal(t, "Sales start on March 1, 2026 at 12:00 UTC", booking.WindowStatusMessage(w, baseTime.Add(-time.Hour)))
	assert.Equal(t, "Sales are live!", booking.WindowStatusMessage(w, baseTime))
	assert.Equal(t, "Sales have ended", booking.WindowStatusMessage(w, baseTime.Add(2*time.Hour)))
}

func TestWindowState_PurchasesAllowed(t *testing.T) {
	assert.True(t, booking.WindowActive.PurchasesAllowed())
	assert.False(t, booking.WindowNotStarted.PurchasesAllowed())
	assert.False(t, booking.WindowEnded.PurchasesAllowed())
}

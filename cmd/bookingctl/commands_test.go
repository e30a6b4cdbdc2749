package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"luxe-booking/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantities(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	got, err := parseQuantities([]string{a.String() + "=2", b.String() + " = 1"})

	require.NoError(t, err)
	assert.Equal(t, []quantityArg{{offeringID: a, quantity: 2}, {offeringID: b, quantity: 1}}, got)

	_, err = parseQuantities([]string{"nope"})
	assert.Error(t, err)
	_, err = parseQuantities([]string{a.String() + "=two"})
	assert.Error(t, err)
}

func TestParseGuestNames(t *testing.T) {
	id := uuid.New()

	got, err := parseGuestNames([]string{id.String() + "=Grace Hopper", id.String() + "=Alan Turing"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Grace Hopper", "Alan Turing"}, got[id])
}

func TestReserveCommand(t *testing.T) {
	eventID := uuid.New()
	standard := model.Offering{
		ID:          uuid.New(),
		EventID:     eventID,
		Name:        "General Admission",
		Category:    model.CategoryStandard,
		MaxQuantity: 100,
		IsActive:    true,
	}
	var submitted model.ReservationRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/events/" + eventID.String() + "/ticket-configuration":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": model.TicketConfiguration{
					EventID:          eventID,
					SalesStartDate:   time.Now().Add(-time.Hour),
					SalesEndDate:     time.Now().Add(time.Hour),
					RegularOfferings: []model.Offering{standard},
					VIPOfferings:     []model.Offering{},
				},
			})
		case "/reservations":
			_ = json.NewDecoder(r.Body).Decode(&submitted)
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[string]string{"reservation_code": "LX-12AB34CD"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"--api", srv.URL,
		"reserve", eventID.String(),
		"--ticket", standard.ID.String() + "=2",
		"--name", "Ada Lovelace",
		"--email", "ada@example.com",
		"--phone", "555-0100",
	})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "LX-12AB34CD")
	require.Len(t, submitted.Lines, 1)
	assert.Equal(t, 2, submitted.Lines[0].Quantity)
	assert.Equal(t, "Ada Lovelace", submitted.Contact.Name)
}

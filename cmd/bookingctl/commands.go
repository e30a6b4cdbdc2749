package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"luxe-booking/config"
	"luxe-booking/internal/booking"
	"luxe-booking/internal/client"
	"luxe-booking/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type contactFlags struct {
	name           string
	email          string
	phone          string
	specialRequest string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "contact name")
	cmd.Flags().StringVar(&f.email, "email", "", "contact email")
	cmd.Flags().StringVar(&f.phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&f.specialRequest, "note", "", "special request")
}

func (f *contactFlags) contact() model.ContactInfo {
	return model.ContactInfo{Name: f.name, Email: f.email, Phone: f.phone}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	root := &cobra.Command{
		Use:          "bookingctl",
		Short:        "Browse ticket offerings and place reservations",
		SilenceUsage: true,
	}

	defaults := config.GetGatewayConfig()
	root.PersistentFlags().StringVar(&baseURL, "api", defaults.BaseURL, "reservation service base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "request timeout")

	gateway := func() booking.Gateway {
		return client.NewHTTPGateway(config.GatewayConfig{BaseURL: baseURL, Timeout: timeout}, nil)
	}

	root.AddCommand(
		newOfferingsCmd(gateway),
		newReserveCmd(gateway),
		newTiersCmd(gateway),
		newVIPCmd(gateway),
	)
	return root
}

func newOfferingsCmd(gateway func() booking.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "offerings <event-id>",
		Short: "Show purchasable ticket types and the sales window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id: %w", err)
			}
			session := booking.NewSession(gateway())
			defer session.Close()
			if err := session.Load(cmd.Context(), eventID); err != nil {
				return err
			}
			printOfferings(cmd.OutOrStdout(), session)
			return nil
		},
	}
}

func printOfferings(out io.Writer, session *booking.Session) {
	fmt.Fprintln(out, session.StatusMessage())
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tAVAILABLE")
	for _, o := range session.Offerings() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", o.ID, o.Name, o.Category, o.BasePrice.StringFixed(2), o.Available)
	}
	w.Flush()
}

func newReserveCmd(gateway func() booking.Gateway) *cobra.Command {
	var (
		contact contactFlags
		tickets []string
		guests  []string
	)
	cmd := &cobra.Command{
		Use:   "reserve <event-id>",
		Short: "Reserve tickets for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id: %w", err)
			}
			quantities, err := parseQuantities(tickets)
			if err != nil {
				return err
			}
			names, err := parseGuestNames(guests)
			if err != nil {
				return err
			}

			session := booking.NewSession(gateway())
			defer session.Close()
			if err := session.Load(cmd.Context(), eventID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, q := range quantities {
				applied, err := session.SetQuantity(q.offeringID, q.quantity)
				if err != nil {
					return err
				}
				if applied != q.quantity {
					fmt.Fprintf(out, "quantity for %s adjusted to %d\n", q.offeringID, applied)
				}
			}
			for id, list := range names {
				for i, name := range list {
					session.SetGuestName(id, i, name)
				}
			}
			session.SetContact(contact.contact())
			session.SetSpecialRequest(contact.specialRequest)

			fmt.Fprintf(out, "total: %s\n", session.Ledger().TotalAmount().StringFixed(2))
			return reportOutcome(out, session.Submit(cmd.Context()))
		},
	}
	contact.register(cmd)
	cmd.Flags().StringArrayVar(&tickets, "ticket", nil, "offering-id=quantity (repeatable)")
	cmd.Flags().StringArrayVar(&guests, "guest", nil, "offering-id=guest name, in order (repeatable)")
	return cmd
}

func newTiersCmd(gateway func() booking.Gateway) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List VIP experiences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vip := booking.NewVIPBooking(gateway(), uuid.Nil)
			defer vip.Close()
			if err := vip.LoadTiers(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRICE/GUEST\tSTATUS")
			for _, t := range vip.Tiers() {
				status := "available"
				if !t.Selectable {
					status = "fully booked"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Tier.ID, t.Tier.Name, t.Tier.Price.StringFixed(2), status)
			}
			return w.Flush()
		},
	}
}

func newVIPCmd(gateway func() booking.Gateway) *cobra.Command {
	var (
		contact    contactFlags
		tier       string
		guestCount int
		eventID    string
	)
	cmd := &cobra.Command{
		Use:   "vip",
		Short: "Reserve a VIP experience",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tierID, err := uuid.Parse(tier)
			if err != nil {
				return fmt.Errorf("invalid tier id: %w", err)
			}
			event := uuid.Nil
			if eventID != "" {
				if event, err = uuid.Parse(eventID); err != nil {
					return fmt.Errorf("invalid event id: %w", err)
				}
			}

			vip := booking.NewVIPBooking(gateway(), event)
			defer vip.Close()
			if err := vip.LoadTiers(cmd.Context()); err != nil {
				return err
			}
			if err := vip.SelectTier(tierID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if applied := vip.SetGuestCount(guestCount); applied != guestCount {
				fmt.Fprintf(out, "guest count adjusted to %d\n", applied)
			}
			vip.SetContact(contact.contact())
			vip.SetSpecialRequest(contact.specialRequest)

			fmt.Fprintf(out, "total: %s\n", vip.Total().StringFixed(2))
			return reportOutcome(out, vip.Submit(cmd.Context()))
		},
	}
	contact.register(cmd)
	cmd.Flags().StringVar(&tier, "tier", "", "VIP tier id")
	cmd.Flags().IntVar(&guestCount, "guests", 1, "number of guests")
	cmd.Flags().StringVar(&eventID, "event", "", "event id (optional)")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

func reportOutcome(out io.Writer, outcome booking.Outcome) error {
	fmt.Fprintln(out, outcome.Message)
	for key, msg := range outcome.Errors {
		fmt.Fprintf(out, "  %s: %s\n", key, msg)
	}
	if !outcome.Succeeded() {
		return fmt.Errorf("reservation %s", outcome.Status)
	}
	return nil
}

type quantityArg struct {
	offeringID uuid.UUID
	quantity   int
}

// parseQuantities 保留輸入順序，對應購物車的加入順序
func parseQuantities(values []string) ([]quantityArg, error) {
	out := make([]quantityArg, 0, len(values))
	for _, v := range values {
		id, raw, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("ticket %q: expected offering-id=quantity", v)
		}
		offeringID, err := uuid.Parse(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("ticket %q: %w", v, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("ticket %q: %w", v, err)
		}
		out = append(out, quantityArg{offeringID: offeringID, quantity: n})
	}
	return out, nil
}

func parseGuestNames(values []string) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string)
	for _, v := range values {
		id, name, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("guest %q: expected offering-id=name", v)
		}
		offeringID, err := uuid.Parse(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("guest %q: %w", v, err)
		}
		out[offeringID] = append(out[offeringID], name)
	}
	return out, nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/pkg/client"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// NewQuoteCmd creates the quote command.
func NewQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price designs and submit quote or sample requests",
	}
	cmd.AddCommand(newQuoteShowCmd(), newQuoteRequestCmd(), newQuoteSnapshotCmd())
	return cmd
}

// lineItemView renders a line item as a two-column table.
type lineItemView struct{ *client.LineItem }

func (l lineItemView) JSONValue() interface{} { return l.LineItem }

func (l lineItemView) String() string {
	return fmt.Sprintf("%d x %s @ %d %s = %d %s", l.Quantity, l.ProductType, l.UnitPrice, l.Currency, l.LineTotal, l.Currency)
}

func (l lineItemView) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (l lineItemView) TableRows() [][]string {
	return [][]string{
		{"product", l.ProductType},
		{"quantity", strconv.Itoa(l.Quantity)},
		{"base unit", strconv.FormatInt(l.BaseUnit, 10)},
		{"configured locations", strconv.Itoa(l.ConfiguredLocations)},
		{"surcharge / unit", strconv.FormatInt(l.SurchargePerUnit, 10)},
		{"unit price", strconv.FormatInt(l.UnitPrice, 10)},
		{"line total", strconv.FormatInt(l.LineTotal, 10)},
		{"currency", l.Currency},
	}
}

func newQuoteShowCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "show <design-id>",
		Short: "Price a design at a quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			item, err := c.Designs().Quote(ctx, args[0], quantity)
			if err != nil {
				return err
			}
			return PrintResult(cmd, lineItemView{item})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of units")
	return cmd
}

func newQuoteRequestCmd() *cobra.Command {
	var (
		quantity int
		kind     string
	)
	cmd := &cobra.Command{
		Use:   "request <design-id>",
		Short: "Submit a quote or sample request for a ready design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			req, err := c.Designs().RequestQuote(ctx, args[0], quantity, kind)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s request %s submitted", req.Kind, req.ID))
			return PrintResult(cmd, lineItemView{&req.Item})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of units")
	cmd.Flags().StringVar(&kind, "kind", string(pricing.RequestQuote), "request kind (quote, sample)")
	return cmd
}

// newQuoteSnapshotCmd prices an exported snapshot against the configured
// price table without contacting the server.
func newQuoteSnapshotCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "snapshot <snapshot-file>",
		Short: "Price an exported snapshot offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			item, err := quoteSnapshotFile(cliCtx, args[0], quantity)
			if err != nil {
				return err
			}
			return PrintResult(cmd, lineItemView{item})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of units")
	return cmd
}

func quoteSnapshotFile(cliCtx *CLIContext, path string, quantity int) (*client.LineItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read snapshot").WithDetail("path=" + path)
	}
	var exported struct {
		Snapshot domain.Snapshot    `json:"snapshot"`
		Logos    []domain.LogoAsset `json:"logos"`
	}
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotInvalid, "snapshot is not valid JSON").WithDetail("path=" + path)
	}

	d, err := domain.RestoreDesign(domain.DefaultCatalog(), exported.Snapshot, exported.Logos)
	if err != nil {
		return nil, err
	}
	pc := cliCtx.Config.Pricing
	policy, err := pricing.PolicyFromTable(pc.FlatLogoFee, pc.Currency, pc.BasePrices)
	if err != nil {
		return nil, err
	}
	item, err := policy.Quote(d.ProductType(), d.Placements(), quantity)
	if err != nil {
		return nil, err
	}
	cliCtx.Logger.Debug("priced snapshot offline")
	return &client.LineItem{
		ProductType:         string(item.ProductType),
		Quantity:            item.Quantity,
		BaseUnit:            int64(item.BaseUnit),
		ConfiguredLocations: item.ConfiguredLocations,
		SurchargePerUnit:    int64(item.SurchargePerUnit),
		UnitPrice:           int64(item.UnitPrice),
		LineTotal:           int64(item.LineTotal),
		Currency:            item.Currency,
	}, nil
}

//Personal.AI order the ending

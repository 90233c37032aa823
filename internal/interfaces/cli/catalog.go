package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/pkg/client"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse products and placement locations",
	}
	cmd.AddCommand(newCatalogProductsCmd(), newCatalogLocationsCmd(), newCatalogTextureCmd())
	return cmd
}

type productList []client.Product

func (p productList) TableHeaders() []string {
	return []string{"TYPE", "LABEL", "ARCHETYPE", "LOCATIONS"}
}

func (p productList) TableRows() [][]string {
	rows := make([][]string, 0, len(p))
	for _, prod := range p {
		rows = append(rows, []string{prod.Type, prod.Label, prod.Archetype, strconv.Itoa(prod.Locations)})
	}
	return rows
}

type locationList []client.Location

func (l locationList) TableHeaders() []string {
	return []string{"ID", "LABEL", "SIDE", "SIZE CLASS", "POPULAR"}
}

func (l locationList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, loc := range l {
		popular := ""
		if loc.Popular {
			popular = "yes"
		}
		rows = append(rows, []string{loc.ID, loc.Label, loc.Anchor.Side, loc.SizeClass, popular})
	}
	return rows
}

func newCatalogProductsCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List customizable products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offline {
				return PrintResult(cmd, builtinProducts())
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			products, err := c.Catalog().ListProducts(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, productList(products))
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "read the built-in catalog instead of the server")
	return cmd
}

func newCatalogLocationsCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "locations <product-type>",
		Short: "List the placement locations of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				locs, err := builtinLocations(domain.ProductType(args[0]))
				if err != nil {
					return err
				}
				return PrintResult(cmd, locs)
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			locs, err := c.Catalog().Locations(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, locationList(locs))
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "read the built-in catalog instead of the server")
	return cmd
}

func newCatalogTextureCmd() *cobra.Command {
	var (
		opts   client.TextureOptions
		seed   int64
		output string
	)
	cmd := &cobra.Command{
		Use:   "texture <product-type>",
		Short: "Render the base material texture of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				if seed < 0 {
					return errors.InvalidParam("seed must not be negative")
				}
				s := uint64(seed)
				opts.Seed = &s
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			tex, err := c.Catalog().Texture(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return writeTextureFile(cmd, tex, output)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Color, "color", "", "product color as #RRGGBB")
	f.Int64Var(&seed, "seed", 0, "noise seed")
	f.StringVar(&opts.Format, "format", "", "image format (webp, png)")
	f.IntVar(&opts.Size, "size", 0, "texture edge length in pixels")
	f.StringVar(&output, "out", "", "output file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// writeTextureFile stores the image at path and reports its metadata.
func writeTextureFile(cmd *cobra.Command, tex *client.Texture, path string) error {
	if err := os.WriteFile(path, tex.Data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write texture").WithDetail("path=" + path)
	}
	PrintSuccess(cmd, fmt.Sprintf("wrote %d bytes of %s to %s (wrap=%s key=%s)",
		len(tex.Data), tex.ContentType, path, tex.Wrap, tex.Key))
	return nil
}

// builtinProducts lists the compiled-in catalog.
func builtinProducts() productList {
	cat := domain.DefaultCatalog()
	var out productList
	for _, pt := range cat.ProductTypes() {
		tmpl, err := cat.Template(pt)
		if err != nil {
			continue
		}
		out = append(out, client.Product{
			Type:      string(tmpl.Type),
			Label:     tmpl.Label,
			Archetype: string(tmpl.Archetype.Kind),
			Locations: len(tmpl.Locations),
		})
	}
	return out
}

func builtinLocations(pt domain.ProductType) (locationList, error) {
	locs, err := domain.DefaultCatalog().LocationsFor(pt)
	if err != nil {
		return nil, err
	}
	out := make(locationList, 0, len(locs))
	for _, l := range locs {
		out = append(out, client.Location{
			ID:        string(l.ID),
			Label:     l.Label,
			Anchor:    client.Anchor{Offset: l.Anchor.Offset, BaseRotation: l.Anchor.BaseRotation, Side: l.Anchor.Side.String()},
			BaseScale: l.BaseScale,
			Popular:   l.Popular,
			SizeClass: l.SizeClass.String(),
		})
	}
	return out, nil
}

//Personal.AI order the ending

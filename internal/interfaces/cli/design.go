package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/PrintShop-Customizer/pkg/client"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// NewDesignCmd creates the design command.
func NewDesignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Create and edit customization designs",
	}
	cmd.AddCommand(
		newDesignCreateCmd(),
		newDesignGetCmd(),
		newDesignDeleteCmd(),
		newDesignLogoCmd(),
		newDesignToggleCmd(),
		newDesignPlaceCmd(),
		newDesignColorCmd(),
		newDesignTermsCmd(),
		newDesignRenderCmd(),
		newDesignResolveCmd(),
		newDesignTextureCmd(),
		newDesignExportCmd(),
		newDesignImportCmd(),
	)
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Output types
// ─────────────────────────────────────────────────────────────────────────────

// designView renders a design as its placements table.
type designView struct{ *client.Design }

func (d designView) JSONValue() interface{} { return d.Design }

func (d designView) String() string {
	return fmt.Sprintf("design %s (%s, %s) readiness=%s logos=%d placements=%d terms=%t",
		d.ID, d.ProductType, d.ProductColor, d.Readiness, len(d.Logos), len(d.Placements), d.TermsAccepted)
}

func (d designView) TableHeaders() []string {
	return []string{"LOCATION", "SIDE", "STATE", "LOGO", "SIZE %", "ROTATION"}
}

func (d designView) TableRows() [][]string {
	rows := make([][]string, 0, len(d.Placements)+1)
	for _, p := range d.Placements {
		rows = append(rows, []string{
			p.LocationID, p.Side, p.State, p.LogoID,
			fmt.Sprintf("%.0f", p.SizePercent), fmt.Sprintf("%.0f", p.RotationDegrees),
		})
	}
	return rows
}

type frameView struct{ *client.Frame }

func (f frameView) JSONValue() interface{} { return f.Frame }

func (f frameView) TableHeaders() []string {
	return []string{"LOCATION", "SIDE", "LOGO", "POSITION", "SCALE", "SKIPPED"}
}

func (f frameView) TableRows() [][]string {
	rows := make([][]string, 0, len(f.Items)+len(f.Skipped))
	for _, it := range f.Items {
		rows = append(rows, []string{
			it.LocationID, it.Side, it.LogoID,
			fmt.Sprintf("%.3f,%.3f,%.3f", it.Position[0], it.Position[1], it.Position[2]),
			fmt.Sprintf("%.3f", it.Scale[0]), "",
		})
	}
	for _, s := range f.Skipped {
		rows = append(rows, []string{s.LocationID, "", "", "", "", s.Reason})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────────────────────

func newDesignCreateCmd() *cobra.Command {
	var product, color string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().Create(ctx, product, color)
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
	cmd.Flags().StringVar(&product, "product", "tshirt", "product type")
	cmd.Flags().StringVar(&color, "color", "", "product color as #RRGGBB")
	return cmd
}

func newDesignGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <design-id>",
		Short: "Show a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
}

func newDesignDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <design-id>",
		Short: "Delete a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			if err := c.Designs().Delete(ctx, args[0]); err != nil {
				return err
			}
			PrintSuccess(cmd, "deleted design "+args[0])
			return nil
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logos
// ─────────────────────────────────────────────────────────────────────────────

func newDesignLogoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logo",
		Short: "Manage the logos of a design",
	}

	var name string
	add := &cobra.Command{
		Use:   "add <design-id> <image-file>",
		Short: "Upload a logo image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read logo image").WithDetail("path=" + args[1])
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			logoID, d, err := c.Designs().AddLogo(ctx, args[0], name, imageContentType(args[1], data), data)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, "added logo "+logoID)
			return PrintResult(cmd, designView{d})
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name (default: file name)")

	rename := &cobra.Command{
		Use:   "rename <design-id> <logo-id> <name>",
		Short: "Rename a logo",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().RenameLogo(ctx, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <design-id> <logo-id>",
		Short: "Remove a logo; placements using it are reassigned",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().RemoveLogo(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}

	cmd.AddCommand(add, rename, remove)
	return cmd
}

// imageContentType prefers the file extension and falls back to sniffing.
func imageContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// ─────────────────────────────────────────────────────────────────────────────
// Placements
// ─────────────────────────────────────────────────────────────────────────────

func newDesignToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <design-id> <location-id>",
		Short: "Select or deselect a placement location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			selected, d, err := c.Designs().ToggleLocation(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			state := "deselected"
			if selected {
				state = "selected"
			}
			PrintSuccess(cmd, args[1]+" "+state)
			return PrintResult(cmd, designView{d})
		},
	}
}

func newDesignPlaceCmd() *cobra.Command {
	var (
		logoID   string
		size     float64
		rotation float64
	)
	cmd := &cobra.Command{
		Use:   "place <design-id> <location-id>",
		Short: "Set the logo, size or rotation of a selected location",
		Long:  "Set the logo, size or rotation of a selected location.\nSize is clamped to [10, 60] percent and rotation to [-180, 180] degrees.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd client.PlacementUpdate
			flags := cmd.Flags()
			if flags.Changed("logo") {
				upd.LogoID = &logoID
			}
			if flags.Changed("size") {
				upd.SizePercent = &size
			}
			if flags.Changed("rotation") {
				upd.RotationDegrees = &rotation
			}
			if upd == (client.PlacementUpdate{}) {
				return errors.InvalidParam("at least one of --logo, --size or --rotation is required")
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().UpdatePlacement(ctx, args[0], args[1], upd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
	f := cmd.Flags()
	f.StringVar(&logoID, "logo", "", "logo id")
	f.Float64Var(&size, "size", 0, "size percent")
	f.Float64Var(&rotation, "rotation", 0, "rotation in degrees")
	return cmd
}

func newDesignColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <design-id> <#RRGGBB>",
		Short: "Change the product color",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().SetColor(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
}

func newDesignTermsCmd() *cobra.Command {
	var decline bool
	cmd := &cobra.Command{
		Use:   "terms <design-id>",
		Short: "Accept the printing terms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().AcceptTerms(ctx, args[0], !decline)
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
	cmd.Flags().BoolVar(&decline, "decline", false, "withdraw acceptance")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func newDesignRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <design-id>",
		Short: "Show the render frame of a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			f, err := c.Designs().Render(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, frameView{f})
		},
	}
}

func newDesignResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <design-id>",
		Short: "Load pending logo textures now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			res, err := c.Designs().ResolveTextures(ctx, args[0])
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("requested=%d applied=%d failed=%d", res.Requested, res.Applied, res.Failed))
			if res.Design == nil {
				return nil
			}
			return PrintResult(cmd, designView{res.Design})
		},
	}
}

func newDesignTextureCmd() *cobra.Command {
	var (
		opts   client.TextureOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "texture <design-id>",
		Short: "Download the base material texture of a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			tex, err := c.Designs().Texture(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return writeTextureFile(cmd, tex, output)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "", "image format (webp, png)")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "texture edge length in pixels")
	cmd.Flags().StringVar(&output, "out", "", "output file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshots
// ─────────────────────────────────────────────────────────────────────────────

func newDesignExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <design-id>",
		Short: "Export a design snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			snap, err := c.Designs().ExportSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return printJSON(cmd, snap)
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode snapshot")
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write snapshot").WithDetail("path=" + output)
			}
			PrintSuccess(cmd, "snapshot written to "+output)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "out", "", "output file (default: stdout)")
	return cmd
}

func newDesignImportCmd() *cobra.Command {
	var acceptTerms bool
	cmd := &cobra.Command{
		Use:   "import <snapshot-file>",
		Short: "Create a design from an exported snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshotFile(args[0])
			if err != nil {
				return err
			}
			c, ctx, cancel, err := apiClient(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			d, err := c.Designs().ImportSnapshot(ctx, snap, acceptTerms)
			if err != nil {
				return err
			}
			return PrintResult(cmd, designView{d})
		},
	}
	cmd.Flags().BoolVar(&acceptTerms, "accept-terms", false, "accept the printing terms on the new design")
	return cmd
}

func readSnapshotFile(path string) (*client.ExportedSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read snapshot").WithDetail("path=" + path)
	}
	var snap client.ExportedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotInvalid, "snapshot is not valid JSON").WithDetail("path=" + path)
	}
	return &snap, nil
}

//Personal.AI order the ending

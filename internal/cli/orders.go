package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/vibita-lite/internal/app"
	"github.com/Additional-Code/vibita-lite/internal/entity"
	"github.com/Additional-Code/vibita-lite/internal/export"
	"github.com/Additional-Code/vibita-lite/internal/seeder"
	service "github.com/Additional-Code/vibita-lite/internal/service/order"
)

func newExportCmd() *cobra.Command {
	var shop, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the recent orders of a shop as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *service.Service
			opts := fx.Options(app.Core, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				orders, err := svc.ExportOrders(ctx, shop)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if out != "" {
					if out == "." {
						out = export.Filename(time.Now())
					}
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := export.Write(w, orders); err != nil {
					return err
				}
				if out != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "exported %d orders to %s\n", len(orders), out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "Shop domain, e.g. demo.myshopify.com")
	cmd.Flags().StringVar(&out, "out", "", `Output file; "." picks orders-<date>.csv; default stdout`)
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and change processed flags",
	}

	var shop, order string
	cmd.PersistentFlags().StringVar(&shop, "shop", "", "Shop domain")
	cmd.PersistentFlags().StringVar(&order, "order", "", "Order id, e.g. gid://shopify/Order/1")
	_ = cmd.MarkPersistentFlagRequired("shop")

	withService := func(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
		var svc *service.Service
		opts := fx.Options(app.Core, fx.Populate(&svc))
		return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
			return fn(ctx, svc)
		})
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored flag (processed, unprocessed or unknown)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				state, err := svc.ProcessedState(ctx, shop, order)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite the flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			processed, _ := cmd.Flags().GetBool("processed")
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				if err := svc.SetProcessed(ctx, shop, order, processed); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stateLabel(processed))
				return nil
			})
		},
	}
	setCmd.Flags().Bool("processed", true, "Value to store")

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip the flag and print the new value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) error {
				processed, err := svc.ToggleProcessed(ctx, shop, order)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stateLabel(processed))
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: `Bulk load "orderId,processed" rows from a CSV file ("-" for stdin)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			var in io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var seed *seeder.Seeder
			opts := fx.Options(app.Storage, seeder.Module, fx.Populate(&seed))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				n, err := seed.States(ctx, shop, in)
				if err != nil {
					return fmt.Errorf("imported %d rows before failing: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d order states\n", n)
				return nil
			})
		},
	}
	importCmd.Flags().String("file", "-", "CSV file to read")

	cmd.AddCommand(getCmd, setCmd, toggleCmd, importCmd)
	return cmd
}

func stateLabel(processed bool) string {
	return entity.Known(processed).String()
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vova4o/passkeeper/internal/client/editor"
	"github.com/vova4o/passkeeper/internal/client/menu"
	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/barcode"
)

func newPairCommand(run *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Pair this device with the server",
		Long: `Pair exchanges the server passphrase for an access token and keeps the
token in the local database. The passphrase may also come from PASS_PASSPHRASE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := run.v.GetString("passphrase")
			if passphrase == "" {
				return fmt.Errorf("%w: passphrase is required", models.ErrValidationFailed)
			}

			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				if err := b.Pair(ctx, run.opts.Device, passphrase); err != nil {
					return err
				}
				return out.Message("Paired %s with %s", run.opts.Device, run.opts.Server)
			})
		},
	}

	cmd.Flags().String("passphrase", "", "server pairing passphrase")
	_ = run.v.BindPFlag("passphrase", cmd.Flags().Lookup("passphrase"))
	return cmd
}

func newUnpairCommand(run *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "unpair",
		Short: "Forget the access token of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				if err := b.Unpair(ctx); err != nil {
					return err
				}
				return out.Message("Unpaired from %s", run.opts.Server)
			})
		},
	}
}

func newListCommand(run *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				passes, err := b.List(ctx)
				if err != nil {
					return err
				}
				return out.Data(passes, func(w io.Writer) error {
					return writePassList(w, passes)
				})
			})
		},
	}
}

func newShowCommand(run *runner) *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a pass and its extensions menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				pass, err := b.Get(ctx, args[0])
				if err != nil {
					return err
				}

				var state menu.State
				if expand {
					state.Toggle()
				}

				return out.Data(pass, func(w io.Writer) error {
					if err := writePass(w, pass); err != nil {
						return err
					}
					fmt.Fprintln(w)
					return writeMenu(w, state.Rows(pass))
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "expand the extensions menu")
	return cmd
}

func newAddCommand(run *runner) *cobra.Command {
	var (
		title  string
		code   string
		code39 bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				e := editor.New(b)
				e.SetTitle(title)
				e.SetCode(code)
				if code39 && !e.SelectFormat(barcode.Code39) {
					return fmt.Errorf("%w: code %q can not be encoded as Code39", models.ErrValidationFailed, code)
				}
				return submit(ctx, e, out)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "pass title")
	cmd.Flags().StringVarP(&code, "code", "c", "", "pass code")
	cmd.Flags().BoolVar(&code39, "code39", false, "render the code as Code39 instead of QR")
	return cmd
}

func newEditCommand(run *runner) *cobra.Command {
	var (
		title  string
		code   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, code or format of a pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var selected barcode.Format
			if cmd.Flags().Changed("format") {
				f, ok := barcode.ParseFormat(format)
				if !ok {
					return fmt.Errorf("%w: unknown format %q", models.ErrValidationFailed, format)
				}
				selected = f
			}

			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				pass, err := b.Get(ctx, args[0])
				if err != nil {
					return err
				}

				e := editor.Edit(b, pass)
				if cmd.Flags().Changed("title") {
					e.SetTitle(title)
				}
				if cmd.Flags().Changed("code") {
					e.SetCode(code)
				}
				if cmd.Flags().Changed("format") && !e.SelectFormat(selected) {
					return fmt.Errorf("%w: code %q can not be encoded as %s", models.ErrValidationFailed, e.Code(), selected)
				}
				return submit(ctx, e, out)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&code, "code", "c", "", "new code")
	cmd.Flags().StringVarP(&format, "format", "f", "", "barcode format (qr|code39)")
	return cmd
}

// submit saves the candidate and prints the stored pass
func submit(ctx context.Context, e *editor.Editor, out *OutputFormatter) error {
	heading, label := e.Heading(), e.SubmitLabel()

	pass, err := e.Submit(ctx)
	if err != nil {
		return err
	}

	return out.Data(pass, func(w io.Writer) error {
		fmt.Fprintf(w, "%s: %s ok\n", heading, label)
		return writePass(w, pass)
	})
}

func newDeleteCommand(run *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				pass, err := b.Get(ctx, args[0])
				if err != nil {
					return err
				}

				if err := editor.Edit(b, pass).RequestDelete(ctx); err != nil {
					return err
				}
				return out.Message("Deleted pass %s", pass.ID)
			})
		},
	}
}

func newSetCommand(run *runner) *cobra.Command {
	var (
		destination string
		off         bool
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Show a pass on a destination, replacing the pass shown there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := models.ParseDestination(destination)
			if err != nil {
				return err
			}

			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				if err := b.SetExclusiveFlag(ctx, args[0], dest, !off); err != nil {
					return err
				}
				if off {
					return out.Message("Pass %s removed from %s", args[0], dest)
				}
				return out.Message("Pass %s is now on %s", args[0], dest)
			})
		},
	}

	cmd.Flags().StringVarP(&destination, "destination", "d", "", "watch, widget or siri")
	cmd.Flags().BoolVar(&off, "off", false, "remove the pass from the destination")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

func newActiveCommand(run *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "active <destination>",
		Short: "Show the pass a destination currently displays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := models.ParseDestination(args[0])
			if err != nil {
				return err
			}

			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				pass, err := b.Active(ctx, dest)
				if err != nil {
					return err
				}
				return out.Data(pass, func(w io.Writer) error {
					return writePass(w, pass)
				})
			})
		},
	}
}

func newRenderCommand(run *runner) *cobra.Command {
	var (
		output  string
		size    int
		forceQR bool
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Write the barcode of a pass as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				path = args[0] + ".png"
			}

			return run.with(cmd, func(ctx context.Context, b Backend, out *OutputFormatter) error {
				data, err := b.Render(ctx, args[0], size, forceQR)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write image", err)
				}
				return out.Message("Wrote %d bytes to %s", len(data), path)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "output file, <id>.png by default")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "image width in pixels, server default when 0")
	cmd.Flags().BoolVar(&forceQR, "qr", false, "always render QR, the way the watch shows passes")
	return cmd
}

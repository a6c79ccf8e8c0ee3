package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	"github.com/fairyhunter13/product-reconciler/internal/errors"
	"github.com/fairyhunter13/product-reconciler/internal/model"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
	"github.com/fairyhunter13/product-reconciler/internal/queue"
	"github.com/fairyhunter13/product-reconciler/internal/reconcile"
	"github.com/fairyhunter13/product-reconciler/internal/remote"
	"github.com/fairyhunter13/product-reconciler/internal/session"
	"github.com/fairyhunter13/product-reconciler/internal/state"
)

type syncOptions struct {
	remote  string
	creates []string
	deletes []string
	yes     bool
	output  string
}

func newSyncCmd(cfg *config.Config) *cobra.Command {
	var opts syncOptions
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Load, change and print the product collection of a store",
		Long: `Sync runs one client session against a product store. It loads the
collection, applies the requested creates and deletes, and prints the
reconciled collection.`,
		Example: `  product-reconciler sync --remote http://localhost:8080
  product-reconciler sync --create "Desk lamp=19.90" --output yaml
  product-reconciler sync --delete 3 --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.remote == "" {
				opts.remote = cfg.RemoteBaseURL
			}
			if _, err := formatterFor(opts.output); err != nil {
				return err
			}
			return runSync(cmd.Context(), *cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.remote, "remote", "", "store base URL (default REMOTE_BASE_URL)")
	f.StringArrayVar(&opts.creates, "create", nil, "create a product, name=price (repeatable)")
	f.StringArrayVar(&opts.deletes, "delete", nil, "delete the product with this uid (repeatable)")
	f.BoolVarP(&opts.yes, "yes", "y", false, "confirm deletes without prompting")
	f.StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func runSync(ctx context.Context, cfg config.Config, opts syncOptions, in io.Reader, out io.Writer) error {
	st := state.New()
	mgr := queue.NewManager(cfg, queue.New(cfg.ApplyBuffer), st)
	mgr.Start(ctx)
	defer mgr.Stop()

	sess := session.New(
		remote.New(opts.remote, cfg.RemoteTimeout),
		reconcile.New(nil),
		mgr,
		st,
		session.WithConfirm(confirmer(opts.yes, in, out)),
		session.WithNotify(func(op string, err error) {
			obs.Logger.Warn().Err(err).Str("op", op).Msg("sync_operation_failed")
		}),
	)

	if err := sess.Load(ctx); err != nil {
		return fmt.Errorf("loading products: %w", err)
	}
	for _, spec := range opts.creates {
		name, price := splitCreate(spec)
		if _, err := sess.Create(ctx, name, price); err != nil {
			return fmt.Errorf("creating %q: %w", spec, err)
		}
	}
	for _, uid := range opts.deletes {
		err := sess.Delete(ctx, uid)
		if errors.Is(err, errors.ErrDeclined) {
			obs.Logger.Info().Str("uid", uid).Msg("delete_declined")
			continue
		}
		if err != nil {
			return fmt.Errorf("deleting %q: %w", uid, err)
		}
	}

	format, _ := formatterFor(opts.output)
	return format(out, sess.Collection())
}

// splitCreate splits name=price at the last '='.
func splitCreate(s string) (name, price string) {
	i := strings.LastIndex(s, "=")
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
}

func confirmer(yes bool, in io.Reader, out io.Writer) session.ConfirmFunc {
	if yes {
		return func(model.Entity) bool { return true }
	}
	r := bufio.NewReader(in)
	return func(e model.Entity) bool {
		fmt.Fprintf(out, "Delete %q (%s)? [y/N] ", e.Name, e.UID)
		line, _ := r.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

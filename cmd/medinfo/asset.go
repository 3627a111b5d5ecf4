package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/healthcare/medinfo/internal/config"
	"github.com/healthcare/medinfo/internal/domain/medicalinfo"
	"github.com/healthcare/medinfo/internal/platform/auth"
	"github.com/healthcare/medinfo/internal/platform/websocket"
)

// assetCmd drives a medicalinfo.Controller against a running REST server.
// Each subcommand runs one controller operation and reports the error slot.
func assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage MedicalInfo records through the REST API",
	}
	cmd.PersistentFlags().String("server", "", "REST server base URL (defaults to REST_SERVER_URL)")

	cmd.AddCommand(assetListCmd())
	cmd.AddCommand(assetGetCmd())
	cmd.AddCommand(assetAddCmd())
	cmd.AddCommand(assetUpdateCmd())
	cmd.AddCommand(assetDeleteCmd())
	cmd.AddCommand(assetWatchCmd())
	return cmd
}

// client holds what the asset subcommands need to reach the server.
type client struct {
	server string
	tokens *auth.TokenIssuer
	ctrl   *medicalinfo.Controller
}

func newClient(cmd *cobra.Command) (*client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cl := &client{}
	cl.server, _ = cmd.Flags().GetString("server")
	if cl.server == "" {
		cl.server = cfg.RESTServerURL
	}

	opts := []medicalinfo.RESTOption{
		medicalinfo.WithHTTPClient(&http.Client{Timeout: cfg.RESTTimeout}),
	}
	if cfg.AuthSigningKey != "" {
		cl.tokens = auth.NewTokenIssuer([]byte(cfg.AuthSigningKey), cfg.AuthIssuer, cfg.AuthAudience,
			"medinfo-cli", []string{auth.RoleAdmin}, 0)
		opts = append(opts, medicalinfo.WithTokenSource(cl.tokens))
	}

	store := medicalinfo.NewRESTStore(cl.server, opts...)
	cl.ctrl = medicalinfo.NewController(store, newLogger(cfg))
	return cl, nil
}

func newController(cmd *cobra.Command) (*medicalinfo.Controller, error) {
	cl, err := newClient(cmd)
	if err != nil {
		return nil, err
	}
	return cl.ctrl, nil
}

func (cl *client) header() (http.Header, error) {
	h := http.Header{}
	if cl.tokens != nil {
		tok, err := cl.tokens.Token()
		if err != nil {
			return nil, err
		}
		h.Set("Authorization", "Bearer "+tok)
	}
	return h, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// result turns the controller's error slot into the command's error.
func result(ctrl *medicalinfo.Controller) error {
	if msg := ctrl.ErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func assetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctrl.Init(cmdContext(cmd))
			if err := result(ctrl); err != nil {
				return err
			}
			printAssets(cmd.OutOrStdout(), ctrl.Assets())
			return nil
		},
	}
}

func assetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <medId>",
		Short: "Load one record into the edit form and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctrl.GetForm(cmdContext(cmd), args[0])
			if err := result(ctrl); err != nil {
				return err
			}
			printForm(cmd.OutOrStdout(), ctrl.Form())
			return nil
		},
	}
}

func addFormFlags(cmd *cobra.Command) {
	cmd.Flags().String("owner", "", "Owner participant identifier")
	cmd.Flags().String("medication", "", "Medication text")
	cmd.Flags().StringSlice("visit", nil, "Past visit identifier (repeatable, toggles membership)")
	cmd.Flags().StringSlice("doctor", nil, "Permissioned doctor identifier (repeatable, toggles membership)")
}

// applyFormFlags writes the flags the user set into the controller's form.
// Sequence flags toggle membership, so naming an existing member removes it.
func applyFormFlags(cmd *cobra.Command, ctrl *medicalinfo.Controller) error {
	scalars := []struct {
		flag  string
		field medicalinfo.Field
	}{
		{"owner", medicalinfo.FieldOwner},
		{"med-id", medicalinfo.FieldMedID},
		{"medication", medicalinfo.FieldMedication},
	}
	for _, s := range scalars {
		if cmd.Flags().Lookup(s.flag) == nil || !cmd.Flags().Changed(s.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(s.flag)
		if err := ctrl.SetField(s.field, v); err != nil {
			return err
		}
	}

	sequences := []struct {
		flag  string
		field medicalinfo.ArrayField
	}{
		{"visit", medicalinfo.PastVisitsArray},
		{"doctor", medicalinfo.PermissionedDoctorsID},
	}
	for _, s := range sequences {
		values, _ := cmd.Flags().GetStringSlice(s.flag)
		for _, v := range values {
			ctrl.ToggleArrayMember(s.field, v)
		}
	}
	return nil
}

func warnMissing(w io.Writer, form medicalinfo.Form) {
	if missing := form.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.String()
		}
		fmt.Fprintf(w, "warning: required fields empty: %s\n", strings.Join(names, ", "))
	}
}

func assetAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a record from the given fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := applyFormFlags(cmd, ctrl); err != nil {
				return err
			}
			warnMissing(cmd.ErrOrStderr(), ctrl.Form())

			ctrl.AddAsset(cmdContext(cmd))
			if err := result(ctrl); err != nil {
				return err
			}
			printAssets(cmd.OutOrStdout(), ctrl.Assets())
			return nil
		},
	}
	cmd.Flags().String("med-id", "", "Record identifier")
	addFormFlags(cmd)
	return cmd
}

func assetUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <medId>",
		Short: "Load a record, apply the given fields and write it back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			id := args[0]

			ctrl.GetForm(ctx, id)
			if err := result(ctrl); err != nil {
				return err
			}
			if err := applyFormFlags(cmd, ctrl); err != nil {
				return err
			}

			ctrl.UpdateAsset(ctx, id)
			if err := result(ctrl); err != nil {
				return err
			}
			printForm(cmd.OutOrStdout(), ctrl.Form())
			return nil
		},
	}
	addFormFlags(cmd)
	return cmd
}

func assetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <medId>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctrl.SetID(args[0])
			ctrl.DeleteAsset(cmdContext(cmd))
			if err := result(ctrl); err != nil {
				return err
			}
			printAssets(cmd.OutOrStdout(), ctrl.Assets())
			return nil
		},
	}
}

func assetWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [medId...]",
		Short: "Reload and print the record list whenever a record changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := newClient(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			topics := make([]string, 0, len(args))
			for _, id := range args {
				topics = append(topics, "MedicalInfo/"+id)
			}
			wsURL, err := websocket.URL(cl.server, "/api", topics...)
			if err != nil {
				return err
			}
			header, err := cl.header()
			if err != nil {
				return err
			}

			cl.ctrl.Init(ctx)
			if err := result(cl.ctrl); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printAssets(out, cl.ctrl.Assets())

			return websocket.Watch(ctx, wsURL, header, nil, func(ev websocket.Event) {
				fmt.Fprintf(out, "\n%s %s %s\n", ev.Timestamp.Format("15:04:05"), ev.Op, ev.ResourceID)
				cl.ctrl.LoadAll(ctx)
				if msg := cl.ctrl.ErrorMessage(); msg != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
					return
				}
				printAssets(out, cl.ctrl.Assets())
			})
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}

func printAssets(w io.Writer, assets []*medicalinfo.Record) {
	fmt.Fprintf(w, "%-20s %-20s %-24s %-24s %s\n", "MED ID", "OWNER", "MEDICATION", "PAST VISITS", "DOCTORS")
	for _, r := range assets {
		fmt.Fprintf(w, "%-20s %-20s %-24s %-24s %s\n",
			deref(r.MedID), deref(r.Owner), deref(r.Medication),
			joinOrDash(r.PastVisitsArray), joinOrDash(r.PermissionedDoctorsID))
	}
}

func printForm(w io.Writer, form medicalinfo.Form) {
	for _, f := range medicalinfo.Fields {
		var text string
		switch v := form.Value(f).(type) {
		case *string:
			text = deref(v)
		case []string:
			text = joinOrDash(v)
		}
		fmt.Fprintf(w, "%-22s %s\n", f.String()+":", text)
	}
}

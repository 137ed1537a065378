package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/builder"
	"github.com/MarcoPoloResearchLab/linkden/internal/client"
	"github.com/MarcoPoloResearchLab/linkden/internal/config"
	"github.com/MarcoPoloResearchLab/linkden/internal/logging"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// writerNotifier prints builder toasts to the command's streams.
type writerNotifier struct {
	out io.Writer
	err io.Writer
}

func (n writerNotifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

func (n writerNotifier) Error(message string) {
	fmt.Fprintln(n.err, "error:", message)
}

type adminSession struct {
	api     *client.Client
	builder *builder.Builder
	logger  *zap.Logger
}

func openAdminSession(ctx context.Context, cmd *cobra.Command) (*adminSession, error) {
	clientConfig, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(clientConfig.LogLevel, clientConfig.LogEncoding)
	if err != nil {
		return nil, err
	}
	api, err := client.New(client.Config{BaseURL: clientConfig.ServerURL, Token: clientConfig.Token, Logger: logger})
	if err != nil {
		return nil, err
	}
	b, err := builder.New(builder.Config{
		API:         api,
		Notifier:    writerNotifier{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()},
		IDGenerator: blocks.NewTimestampIDGenerator(time.Now),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return &adminSession{api: api, builder: b, logger: logger}, nil
}

// withSession loads the builder and runs fn against it.
func withSession(fn func(ctx context.Context, cmd *cobra.Command, session *adminSession, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		session, err := openAdminSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer session.logger.Sync() //nolint:errcheck
		return fn(ctx, cmd, session, args)
	}
}

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Edit the page on a running server",
	}
	flags := cmd.PersistentFlags()
	flags.String("server", "", "Server base URL")
	flags.String("token", "", "Admin session token")
	if err := viper.BindPFlag("admin.server_url", flags.Lookup("server")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("admin.token", flags.Lookup("token")); err != nil {
		panic(err)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List blocks in order",
			Args:  cobra.NoArgs,
			RunE: withSession(func(_ context.Context, cmd *cobra.Command, session *adminSession, _ []string) error {
				printBlocks(cmd.OutOrStdout(), session.builder.Blocks())
				if session.builder.HasDrafts() {
					fmt.Fprintln(cmd.OutOrStdout(), "unpublished changes pending")
				}
				return nil
			}),
		},
		newAddCommand(),
		&cobra.Command{
			Use:   "toggle <block-id>",
			Short: "Show or hide a block",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(func(ctx context.Context, _ *cobra.Command, session *adminSession, args []string) error {
				return session.builder.ToggleEnabled(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "delete <block-id>",
			Short: "Delete a block",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(func(ctx context.Context, _ *cobra.Command, session *adminSession, args []string) error {
				return session.builder.DeleteBlock(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "move <block-id> <target-block-id>",
			Short: "Move a block to the target's position",
			Args:  cobra.ExactArgs(2),
			RunE: withSession(func(ctx context.Context, _ *cobra.Command, session *adminSession, args []string) error {
				session.builder.BeginDrag(args[0])
				return session.builder.Drop(ctx, args[1])
			}),
		},
		newEditCommand(),
		&cobra.Command{
			Use:   "publish",
			Short: "Publish every draft block",
			Args:  cobra.NoArgs,
			RunE: withSession(func(ctx context.Context, cmd *cobra.Command, session *adminSession, _ []string) error {
				if !session.builder.HasDrafts() {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to publish")
					return nil
				}
				return session.builder.PublishAll(ctx)
			}),
		},
		&cobra.Command{
			Use:   "delivery <database|email|both>",
			Short: "Set where contact submissions go",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(func(ctx context.Context, _ *cobra.Command, session *adminSession, args []string) error {
				return session.builder.SetContactDelivery(ctx, settings.DeliveryMode(args[0]))
			}),
		},
		newPreviewCommand(),
		&cobra.Command{
			Use:   "clicks",
			Short: "Show click counts per block",
			Args:  cobra.NoArgs,
			RunE: withSession(func(ctx context.Context, cmd *cobra.Command, session *adminSession, _ []string) error {
				counts, err := session.api.ClickCounts(ctx)
				if err != nil {
					return err
				}
				writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(writer, "BLOCK\tCLICKS")
				for _, count := range counts {
					fmt.Fprintf(writer, "%s\t%d\n", count.BlockID, count.Clicks)
				}
				return writer.Flush()
			}),
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Print change events as they happen",
			Args:  cobra.NoArgs,
			RunE: withSession(func(ctx context.Context, cmd *cobra.Command, session *adminSession, _ []string) error {
				return session.api.Watch(ctx, func(event client.Event) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", event.Timestamp, event.Type, strings.Join(event.BlockIDs, ","))
				})
			}),
		},
	)
	return cmd
}

func newAddCommand() *cobra.Command {
	registry := blocks.Registry()
	kinds := make([]string, 0, len(registry))
	var long strings.Builder
	long.WriteString("Append a block of the given kind. Kinds:\n")
	for _, info := range registry {
		kinds = append(kinds, string(info.Kind))
		fmt.Fprintf(&long, "  %-14s %s\n", info.Kind, info.Description)
	}
	return &cobra.Command{
		Use:       "add <" + strings.Join(kinds, "|") + ">",
		Short:     "Append a block of the given kind",
		Long:      long.String(),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: withSession(func(ctx context.Context, _ *cobra.Command, session *adminSession, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			return session.builder.AddBlock(ctx, kind)
		}),
	}
}

// parseKind accepts registered kinds only.
func parseKind(raw string) (blocks.Kind, error) {
	kind := blocks.Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !blocks.IsKnown(kind) {
		known := make([]string, 0, len(blocks.Registry()))
		for _, info := range blocks.Registry() {
			known = append(known, string(info.Kind))
		}
		return "", fmt.Errorf("unknown block kind %q, want one of %s", raw, strings.Join(known, ", "))
	}
	return kind, nil
}

// parseEmbedType accepts the providers the editor offers. Empty clears.
func parseEmbedType(raw string) (string, error) {
	embedType := strings.ToLower(strings.TrimSpace(raw))
	if embedType == "" || slices.Contains(render.EmbedProviders(), embedType) {
		return embedType, nil
	}
	return "", fmt.Errorf("unknown embed type %q, want one of %s", raw, strings.Join(render.EmbedProviders(), ", "))
}

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <block-id>",
		Short: "Edit block fields; only flags that are set change",
		Args:  cobra.ExactArgs(1),
	}
	flags := cmd.Flags()
	flags.String("title", "", "Title (empty clears)")
	flags.String("url", "", "Link URL")
	flags.String("icon", "", "Icon name")
	flags.String("embed-type", "", "Embed provider ("+strings.Join(render.EmbedProviders(), ", ")+")")
	flags.String("embed-url", "", "Embed URL")
	flags.String("social-icons", "", "Social icons JSON array")
	flags.String("start", "", "Scheduled start ("+builder.ScheduleLayout+", local time)")
	flags.String("end", "", "Scheduled end ("+builder.ScheduleLayout+", local time)")
	flags.Bool("clear-schedule", false, "Remove both schedule bounds")
	flags.StringArray("set", nil, "Config option as key=value; repeatable")

	cmd.RunE = withSession(func(ctx context.Context, cmd *cobra.Command, session *adminSession, args []string) error {
		panel, err := session.builder.OpenEditor(args[0])
		if err != nil {
			return err
		}
		stringFields := map[string]*string{
			"title":        &panel.Title,
			"url":          &panel.URL,
			"icon":         &panel.Icon,
			"embed-type":   &panel.EmbedType,
			"embed-url":    &panel.EmbedURL,
			"social-icons": &panel.SocialIcons,
			"start":        &panel.ScheduledStart,
			"end":          &panel.ScheduledEnd,
		}
		for name, target := range stringFields {
			if flags.Changed(name) {
				value, _ := flags.GetString(name)
				*target = value
			}
		}
		if flags.Changed("embed-type") {
			embedType, err := parseEmbedType(panel.EmbedType)
			if err != nil {
				return err
			}
			panel.EmbedType = embedType
		}
		if clearSchedule, _ := flags.GetBool("clear-schedule"); clearSchedule {
			panel.ClearSchedule()
		}
		pairs, _ := flags.GetStringArray("set")
		for _, pair := range pairs {
			key, raw, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(key) == "" {
				return fmt.Errorf("invalid --set %q, want key=value", pair)
			}
			panel.UpdateConfigField(strings.TrimSpace(key), parseConfigValue(raw))
		}
		if warning := panel.EmbedWarning(); warning != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
		}
		return session.builder.SaveEdit(ctx)
	})
	return cmd
}

func newPreviewCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the draft page HTML",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Colour mode (light, dark); defaults to the stored setting")
	cmd.RunE = withSession(func(ctx context.Context, cmd *cobra.Command, session *adminSession, _ []string) error {
		var colorMode theme.ColorMode
		if strings.TrimSpace(mode) != "" {
			colorMode = theme.ParseColorMode(mode)
			session.builder.SetPreviewMode(colorMode)
		}
		page, err := session.api.PreviewHTML(ctx, colorMode)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), page)
		return err
	})
	return cmd
}

func parseConfigValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := strconv.ParseBool(trimmed); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return parsed
	}
	return raw
}

func printBlocks(out io.Writer, list []blocks.Block) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "POS\tICON\tID\tTYPE\tTITLE\tSTATUS\tVISIBLE")
	for _, block := range list {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%t\n",
			block.Position,
			blocks.IconFor(block.Kind()),
			block.ID,
			block.Type,
			blocks.StringValue(block.Title),
			block.Status,
			block.IsEnabled,
		)
	}
	_ = writer.Flush()
}

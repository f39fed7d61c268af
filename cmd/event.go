package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the domain events the API emits and publish test events to the activity log`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List known event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range events.KnownTypes {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event through the bus so the activity logger handles it`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var eventData string

func publishTestEvent(ctx context.Context, eventType string) error {
	if !slices.Contains(events.KnownTypes, eventType) {
		return fmt.Errorf("unknown event type %q (known: %s)", eventType, strings.Join(events.KnownTypes, ", "))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.LoggerWrapper()

	bus := events.NewEventBus(log)
	events.NewActivityLogger(log).RegisterEventHandlers(bus)

	event := events.NewEvent(eventType, map[string]interface{}{
		"message": eventData,
		"source":  "cli-command",
	})

	log.Info("publishing test event", "event_type", eventType, "event_id", event.ID)
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	log.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

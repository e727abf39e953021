package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish change events by hand, e.g. to force connected clients to refetch.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a change event",
	Long:  `Publish a change event to the in-process bus and, when brokers are configured, to Kafka.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishEvent(args[0])
	},
}

var (
	eventEntity   string
	eventEntityID int64
	eventAction   string
	eventUserID   int64
)

func publishEvent(eventType string) {
	cfg, logger := mustLoad()

	bus := events.NewEventBus(logger)
	bus.Subscribe(events.Wildcard, func(ctx context.Context, event events.Event) error {
		return json.NewEncoder(os.Stdout).Encode(event)
	})

	if cfg.Events.KafkaEnabled() {
		forwarder := events.NewKafkaForwarder(logger, cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		forwarder.Attach(bus)
		defer forwarder.Close()
	}

	evt := events.NewChangeEvent(eventType, eventEntity, eventEntityID, eventAction)
	if eventUserID > 0 {
		evt.ForUser(eventUserID)
	}

	logger.Info("publishing event", "event_type", eventType, "event_id", evt.EventID())

	if err := bus.PublishSync(context.Background(), evt); err != nil {
		logger.Error("failed to publish event", "error", err)
		os.Exit(1)
	}
	logger.Info("event published")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventEntity, "entity", "cli", "Entity name carried by the event")
	publishEventCmd.Flags().Int64Var(&eventEntityID, "id", 0, "Entity id carried by the event")
	publishEventCmd.Flags().StringVar(&eventAction, "action", events.ActionUpdated, "Change action")
	publishEventCmd.Flags().Int64Var(&eventUserID, "user", 0, "Address the event to a single user")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

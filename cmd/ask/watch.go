package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/sam-evolv/property-assistant-sub010/internal/pkg/logger"
	"github.com/sam-evolv/property-assistant-sub010/pkg/events"
	pktNats "github.com/sam-evolv/property-assistant-sub010/pkg/nats"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/stream"

	"github.com/fatih/color"
)

func runWatch(ctx context.Context, natsURL, streamName string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := pktNats.NewSubscriber(natsURL, streamName, logger.NewNopLogger())
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer sub.Close()

	err = sub.Subscribe(ctx, events.AssistantExchangeCompleted, "", func(_ context.Context, event events.Event) error {
		printExchange(out, event)
		return nil
	})
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(out, "Watching %s on %s (Ctrl+C to stop)\n", events.AssistantExchangeCompleted, natsURL)
	<-ctx.Done()
	return nil
}

func printExchange(out io.Writer, event events.Event) {
	payload := event.Payload()
	outcome, _ := payload["outcome"].(string)

	c := color.New(color.FgGreen)
	if outcome != stream.OutcomeDone {
		c = color.New(color.FgRed)
	}
	c.Fprintf(out, "%s %-5s ", event.Timestamp().Format("15:04:05"), outcome)

	details, _ := json.Marshal(map[string]interface{}{
		"tenant_id":    payload["tenant_id"],
		"layers":       payload["layers"],
		"functions":    payload["functions"],
		"route_source": payload["route_source"],
		"duration_ms":  payload["duration_ms"],
	})
	fmt.Fprintln(out, string(details))
}

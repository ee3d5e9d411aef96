package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/dto"
	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/stream"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type chatOptions struct {
	server        string
	token         string
	developmentID string
	question      string
	raw           bool
	timeout       time.Duration
}

func runChat(ctx context.Context, opts chatOptions, out io.Writer) error {
	req := dto.ChatRequest{Message: opts.question}
	if opts.developmentID != "" {
		id, err := uuid.Parse(opts.developmentID)
		if err != nil {
			return fmt.Errorf("invalid development id: %w", err)
		}
		req.DevelopmentId = &id
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	url := strings.TrimRight(opts.server, "/") + "/api/assistant/v1/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+opts.token)

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	return renderFrames(resp.Body, out, opts.raw)
}

// renderFrames prints an NDJSON frame stream. It returns an error when the
// stream ends with an error frame or without a terminal frame.
func renderFrames(r io.Reader, out io.Writer, raw bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	dim := color.New(color.Faint)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if raw {
			fmt.Fprintln(out, string(line))
		}

		var frame stream.Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			return fmt.Errorf("malformed frame: %w", err)
		}
		if raw {
			if frame.Type.Terminal() {
				return terminalError(frame)
			}
			continue
		}

		switch frame.Type {
		case stream.TypeToken:
			fmt.Fprint(out, frame.Content)
		case stream.TypeSources:
			fmt.Fprintln(out)
			dim.Fprintln(out, "\nSources:")
			for _, s := range frame.Sources {
				dim.Fprintf(out, "  - %s (%s)\n", s.Title, s.Type)
			}
		case stream.TypeChart:
			if frame.Chart != nil {
				dim.Fprintf(out, "Chart: %s [%s] %s\n", frame.Chart.Title, frame.Chart.Kind, strings.Join(frame.Chart.Labels, ", "))
			}
		case stream.TypeActions:
			for _, a := range frame.Actions {
				dim.Fprintf(out, "Action: %s -> %s\n", a.Label, a.Href)
			}
		case stream.TypeRegulatoryDisclaimer:
			warn.Fprintln(out, "Regulatory information only. Confirm with a qualified professional.")
		case stream.TypeError:
			fmt.Fprintln(out)
			fail.Fprintln(out, frame.Message)
			return terminalError(frame)
		case stream.TypeDone:
			fmt.Fprintln(out)
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream ended without a done frame")
}

func terminalError(frame stream.Frame) error {
	if frame.Type == stream.TypeError {
		return fmt.Errorf("assistant error: %s", frame.Message)
	}
	return nil
}

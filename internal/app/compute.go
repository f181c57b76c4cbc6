package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"poolcalc/internal/worker"
)

// Compute decodes wire-form requests from each input file, runs every
// request on its own adapter and writes the wire-form replies as JSON lines
// in input order. A file may hold one request object or an array of them.
func (a *App) Compute(ctx context.Context, opts ComputeOptions) error {
	if len(opts.Inputs) == 0 {
		return errors.New("at least one input file is required")
	}

	var requests []worker.Request
	for _, path := range opts.Inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		decoded, err := decodeRequests(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		requests = append(requests, decoded...)
	}

	replies, err := a.computeAll(ctx, requests)
	if err != nil {
		return err
	}

	for _, reply := range replies {
		line, err := worker.EncodeReply(reply)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(a.Out, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// computeAll fans requests out to one adapter each. Handler failures become
// failed replies; only transport errors abort the batch.
func (a *App) computeAll(ctx context.Context, requests []worker.Request) ([]worker.Reply, error) {
	replies := make([]worker.Reply, len(requests))

	ctx, cancel := context.WithTimeout(ctx, a.Config.Worker.RequestTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			adapter := a.newAdapter()
			defer adapter.Close()

			seq, err := adapter.Post(gctx, req)
			if err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Tag(), err)
			}
			reply, err := adapter.Await(gctx, req.Tag(), seq)
			if err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Tag(), err)
			}
			if reply.Err != nil {
				a.Logger.Warn().Err(reply.Err).Int("index", i).Str("tag", string(req.Tag())).Msg("request failed")
			}
			replies[i] = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return replies, nil
}

func decodeRequests(data []byte) ([]worker.Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	if data[0] != '[' {
		req, err := worker.DecodeRequest(data)
		if err != nil {
			return nil, err
		}
		return []worker.Request{req}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode request list: %w", err)
	}
	out := make([]worker.Request, 0, len(raws))
	for i, raw := range raws {
		req, err := worker.DecodeRequest(raw)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}

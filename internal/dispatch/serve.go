package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// maxLineSize bounds a single request line.
const maxLineSize = 16 << 20

// Request is one line read by Serve.
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one line written by Serve.
type Response struct {
	ID     json.RawMessage `json:"id"`
	OK     bool            `json:"ok"`
	Result any             `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Do runs a request and builds its response.
func (d *Dispatcher) Do(ctx context.Context, req *Request) *Response {
	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	res, err := d.Handle(ctx, req.Op, req.Params)
	if err != nil {
		return &Response{ID: id, Error: NewError(err)}
	}

	return &Response{ID: id, OK: true, Result: res}
}

type line struct {
	data []byte
	err  error
}

// Serve reads JSON requests from r, one per line, and writes one response
// line per request to w, in order. It returns nil at EOF and ctx.Err() when
// the context is cancelled.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan line)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			data := bytes.Clone(sc.Bytes())
			select {
			case lines <- line{data: data}:
			case <-done:
				return
			}
		}

		if err := sc.Err(); err != nil {
			select {
			case lines <- line{err: err}:
			case <-done:
			}
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	slog.Debug("serve: waiting for requests")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				slog.Debug("serve: input closed")
				return nil
			}

			if l.err != nil {
				return fmt.Errorf("serve: reading request: %w", l.err)
			}

			if len(bytes.TrimSpace(l.data)) == 0 {
				continue
			}

			if err := enc.Encode(d.serveLine(ctx, l.data)); err != nil {
				return fmt.Errorf("serve: writing response: %w", err)
			}
		}
	}
}

func (d *Dispatcher) serveLine(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return &Response{
			ID:    json.RawMessage("null"),
			Error: &Error{Kind: KindInvalid, Message: fmt.Sprintf("malformed request: %v", err)},
		}
	}

	return d.Do(ctx, &req)
}

// Package loader fetches a delimited-text dataset once, asynchronously,
// from a local path or an HTTP(S) URL.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/KaramelBytes/tabula/internal/table"
)

// State is the loading state shown to the user.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// RetrievalError reports that the source could not be fetched or parsed.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Result is the outcome of a load.
type Result struct {
	Source  string
	Header  []string
	Records []table.RawRecord
}

// Loader issues one-shot loads. The zero value reads immediately with
// http.DefaultClient and a comma delimiter sniffed from the source name.
type Loader struct {
	// Delay postpones the request, e.g. to let a loading placeholder render.
	Delay time.Duration
	// Delimiter overrides the sniffed delimiter when non-zero.
	Delimiter rune
	Client    *http.Client
	Logger    *log.Logger
}

// Pending is a load in flight. It resolves exactly once.
type Pending struct {
	done chan struct{}

	mu     sync.Mutex
	state  State
	result Result
	err    error
}

// Done is closed when the load has resolved.
func (p *Pending) Done() <-chan struct{} { return p.done }

// State reports the current loading state.
func (p *Pending) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result blocks until the load resolves.
func (p *Pending) Result() (Result, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err
}

func (p *Pending) resolve(res Result, err error) {
	p.mu.Lock()
	p.result, p.err = res, err
	if err != nil {
		p.state = StateFailed
	} else {
		p.state = StateReady
	}
	p.mu.Unlock()
	close(p.done)
}

// Start begins loading source in the background. There is no retry: a
// failure resolves the Pending with a *RetrievalError.
func (l *Loader) Start(ctx context.Context, source string) *Pending {
	p := &Pending{done: make(chan struct{}), state: StateLoading}
	go func() {
		res, err := l.load(ctx, source)
		if err != nil {
			err = &RetrievalError{Source: source, Err: err}
		}
		p.resolve(res, err)
	}()
	return p
}

// Load starts a load and waits for it.
func (l *Loader) Load(ctx context.Context, source string) (Result, error) {
	return l.Start(ctx, source).Result()
}

func (l *Loader) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l *Loader) load(ctx context.Context, source string) (Result, error) {
	if l.Delay > 0 {
		l.logger().Debug("delaying load", "source", source, "delay", l.Delay)
		t := time.NewTimer(l.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Result{}, ctx.Err()
		case <-t.C:
		}
	}
	start := time.Now()
	rc, err := l.open(ctx, source)
	if err != nil {
		return Result{}, err
	}
	defer rc.Close()

	delim := l.Delimiter
	if delim == 0 {
		delim = SniffDelimiter(source)
	}
	header, rows, err := ParseCSV(rc, delim)
	if err != nil {
		return Result{}, err
	}
	l.logger().Debug("loaded dataset", "source", source, "rows", len(rows), "columns", len(header), "elapsed", time.Since(start).Round(time.Millisecond))
	return Result{Source: source, Header: header, Records: rows}, nil
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !IsURL(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		return f, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}

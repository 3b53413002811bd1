package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// response is the outcome of one GET.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// fetchOnce issues a single GET. Transport failures return an error; any
// HTTP status is reported in the response, with the body read only on 2xx.
func fetchOnce(ctx context.Context, client *http.Client, url string, timeout time.Duration) (response, error) {
	if client == nil {
		return response{}, errors.New("loader: http client is not configured")
	}
	if url == "" {
		return response{}, errors.New("loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	out := response{status: resp.StatusCode}
	if !out.ok() {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, nil
	}

	out.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return response{}, err
	}
	return out, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Package netx performs the direct PUT of a payload to a presigned blob
// store URL, reporting progress back on the caller's goroutine.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// ProgressFunc receives the cumulative number of bytes sent and the total.
type ProgressFunc func(sent, total int64)

// StatusError is returned when the blob store answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload failed: %s", e.Status)
	}
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, e.Body)
}

// Uploader PUTs payloads to presigned URLs.
type Uploader struct {
	client *http.Client
}

// NewUploader wraps client; a nil client means a plain http.Client.
func NewUploader(client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{client: client}
}

type doResult struct {
	resp *http.Response
	err  error
}

// Put sends body to url with the given Content-Type and returns the ETag
// header, which may be empty. progress, when non-nil, is invoked on the
// calling goroutine; the transport goroutine never waits for it.
func (u *Uploader) Put(ctx context.Context, url string, body []byte, contentType string, progress ProgressFunc) (string, error) {
	total := int64(len(body))
	updates := make(chan int64, 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, &progressReader{r: bytes.NewReader(body), updates: updates})
	if err != nil {
		return "", err
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	done := make(chan doResult, 1)
	go func() {
		resp, err := u.client.Do(req)
		done <- doResult{resp: resp, err: err}
	}()

	report := func(sent int64) {
		if progress != nil {
			progress(sent, total)
		}
	}

	for {
		select {
		case sent := <-updates:
			report(sent)
		case res := <-done:
			select {
			case sent := <-updates:
				report(sent)
			default:
			}
			return finish(res)
		}
	}
}

func finish(res doResult) (string, error) {
	if res.err != nil {
		return "", res.err
	}
	defer res.resp.Body.Close()

	if res.resp.StatusCode < 200 || res.resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.resp.Body, 1024))
		return "", &StatusError{StatusCode: res.resp.StatusCode, Status: res.resp.Status, Body: string(bytes.TrimSpace(b))}
	}
	_, _ = io.Copy(io.Discard, res.resp.Body)
	return res.resp.Header.Get("ETag"), nil
}

// progressReader publishes the running byte count into a one-slot channel,
// replacing a value the receiver has not picked up yet.
type progressReader struct {
	r       io.Reader
	sent    int64
	updates chan int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.publish(p.sent)
	}
	return n, err
}

func (p *progressReader) publish(v int64) {
	select {
	case p.updates <- v:
		return
	default:
	}
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- v:
	default:
	}
}

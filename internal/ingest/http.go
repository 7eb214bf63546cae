package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AngelCh415/collabhub/internal/utils"
)

// errPermanent marks responses that retrying will not fix.
var errPermanent = errors.New("permanent upstream error")

// GetJSONWithRetry GETs url and decodes the body into dst, retrying
// transport errors and 5xx/429 with exponential backoff and jitter.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, url, bearer string, dst any) error {
	if url == "" {
		return errors.New("empty url")
	}
	b := utils.NewBackoff(100*time.Millisecond, 2, 150*time.Millisecond)
	var perm error
	err := b.Do(ctx, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			perm = err
			return nil
		}
		req.Header.Set("Accept", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(body))
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return err
			}
			perm = fmt.Errorf("%w: %w", errPermanent, err)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			perm = fmt.Errorf("%w: decode: %w", errPermanent, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return perm
}

// Package httpclient wraps outbound requests to offchain metadata endpoints.
// It encapsulates all the details specific to the HTTP interactions:
// - rate limiting
// - cool down period after a 429
// - mapping response codes to errors
// Higher layers decide which endpoints to call and how to interpret their
// payloads; this package only moves bytes.
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/crosslane/relayer/protocol"
)

const (
	// maxCoolDownDuration defines the maximum duration we can wait till firing the next request.
	maxCoolDownDuration = 10 * time.Minute
)

var (
	ErrRateLimit       = errors.New("offchain endpoint is rate limiting us")
	ErrTimeout         = errors.New("offchain endpoint timed out")
	ErrUnknownResponse = errors.New("unexpected response from offchain endpoint")
)

type Status int

// Client fetches offchain data over HTTP with either GET or POST. Request
// URLs are complete: endpoints are announced per message, so there is no
// shared base URL to resolve against.
type Client interface {
	// Get requests requestURL with no body.
	Get(ctx context.Context, requestURL string) (protocol.ByteSlice, Status, error)
	// Post sends requestData to requestURL as a JSON body.
	Post(ctx context.Context, requestURL string, requestData protocol.ByteSlice) (protocol.ByteSlice, Status, error)
}

type httpClient struct {
	lggr           logger.Logger
	requestTimeout time.Duration
	rate           *rate.Limiter
	// coolDownDuration defines the time to wait after getting rate limited.
	// this value is only used if the 429 response does not contain the Retry-After header
	coolDownDuration time.Duration
	// coolDownUntil defines whether requests are blocked or not.
	coolDownUntil time.Time
	coolDownMu    *sync.RWMutex
}

// NewClient creates a client that spaces its requests at least
// requestInterval apart and bounds each one by requestTimeout. Reuse one
// client across all endpoint calls: the self rate limiting only works when
// every request flows through the same limiter.
func NewClient(
	lggr logger.Logger,
	requestInterval time.Duration,
	requestTimeout time.Duration,
	coolDownDuration time.Duration,
) Client {
	return &httpClient{
		lggr:             lggr,
		requestTimeout:   requestTimeout,
		coolDownDuration: coolDownDuration,
		rate:             rate.NewLimiter(rate.Every(requestInterval), 1),
		coolDownMu:       &sync.RWMutex{},
	}
}

func (h *httpClient) Get(ctx context.Context, requestURL string) (protocol.ByteSlice, Status, error) {
	parsed, err := url.ParseRequestURI(requestURL)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, httpStatus, err := h.callAPI(ctx, h.lggr, http.MethodGet, *parsed, nil)
	h.lggr.Debugw(
		"Response from offchain endpoint",
		"Method", "GET",
		"requestURL", requestURL,
		"status", httpStatus,
		"err", err,
	)
	return response, httpStatus, err
}

func (h *httpClient) Post(
	ctx context.Context,
	requestURL string,
	requestData protocol.ByteSlice,
) (protocol.ByteSlice, Status, error) {
	parsed, err := url.ParseRequestURI(requestURL)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	response, httpStatus, err := h.callAPI(ctx, h.lggr, http.MethodPost, *parsed, bytes.NewBuffer(requestData))
	h.lggr.Debugw(
		"Response from offchain endpoint",
		"Method", "POST",
		"requestURL", requestURL,
		"requestBody", string(requestData),
		"status", httpStatus,
		"err", err,
	)
	return response, httpStatus, err
}

func (h *httpClient) callAPI(
	ctx context.Context,
	lggr logger.Logger,
	method string,
	url url.URL,
	body io.Reader,
) (protocol.ByteSlice, Status, error) {
	// Terminate immediately when rate limited
	if coolDown, duration := h.inCoolDownPeriod(); coolDown {
		lggr.Errorw(
			"Rate limited by endpoint, dropping all requests",
			"coolDownDuration", duration,
		)
		return nil, http.StatusTooManyRequests, ErrRateLimit
	}

	if h.rate != nil {
		// Wait blocks until the endpoint can be called or the context is Done.
		if waitErr := h.rate.Wait(ctx); waitErr != nil {
			lggr.Warnw("Self rate-limited, sending too many requests to the endpoint")
			return nil, http.StatusTooManyRequests, ErrRateLimit
		}
	}

	// Use a timeout to guard against the endpoint hanging and stalling the
	// whole proof build.
	timeoutCtx, cancel := context.WithTimeoutCause(ctx, h.requestTimeout, ErrTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, method, url.String(), body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req.Header.Add("accept", "application/json")
	if body != nil {
		req.Header.Add("content-type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, http.StatusRequestTimeout, ErrTimeout
		} else if errors.Is(err, ErrTimeout) {
			return nil, http.StatusRequestTimeout, ErrTimeout
		}
		// On error, res is nil in most cases, do not read res.StatusCode, return BadRequest
		return nil, http.StatusBadRequest, err
	}

	var status Status
	//nolint:errcheck // closing body, error can be ignored here
	defer res.Body.Close()
	status = Status(res.StatusCode)

	// Explicitly signal if the endpoint is rate limiting us
	if res.StatusCode == http.StatusTooManyRequests {
		h.setCoolDownPeriod(lggr, res.Header)
		return nil, status, ErrRateLimit
	}
	if res.StatusCode != http.StatusOK {
		return nil, status, ErrUnknownResponse
	}

	payloadBytes, err := io.ReadAll(res.Body)
	return payloadBytes, status, err
}

func (h *httpClient) setCoolDownPeriod(lggr logger.Logger, headers http.Header) {
	coolDownDuration := h.coolDownDuration
	if retryAfterHeader, exists := headers["Retry-After"]; exists && len(retryAfterHeader) > 0 {
		retryAfterSec, errParseInt := strconv.ParseInt(retryAfterHeader[0], 10, 64)
		if errParseInt == nil {
			coolDownDuration = time.Duration(retryAfterSec) * time.Second
		} else {
			parsedTime, err := time.Parse(time.RFC1123, retryAfterHeader[0])
			if err == nil {
				coolDownDuration = time.Until(parsedTime)
			}
		}
	}
	coolDownDuration = min(coolDownDuration, maxCoolDownDuration)
	// Logging on the error level, because we should always self-rate limit before hitting the endpoint's limit
	lggr.Errorw(
		"Rate limited by the offchain endpoint, setting cool down",
		"coolDownDuration", coolDownDuration,
	)

	h.coolDownMu.Lock()
	defer h.coolDownMu.Unlock()
	h.coolDownUntil = time.Now().Add(coolDownDuration)
}

func (h *httpClient) inCoolDownPeriod() (bool, time.Duration) {
	h.coolDownMu.RLock()
	defer h.coolDownMu.RUnlock()
	return time.Now().Before(h.coolDownUntil), time.Until(h.coolDownUntil)
}

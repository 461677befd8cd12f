package dropbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/dbxshell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dbxshell/internal/remote"
	"github.com/GriffinCanCode/dbxshell/internal/shared/id"
)

const userAgent = "dbxshell/1.0"

// Options configures a Client.
type Options struct {
	AppName      string
	Token        string
	APIURL       string
	ContentURL   string
	Timeout      time.Duration
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// RequestsPerSecond of 0 means unlimited.
	RequestsPerSecond float64

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// OptionsFromConfig maps configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AppName:           cfg.Shell.AppName,
		Token:             cfg.Shell.AccessToken,
		APIURL:            cfg.Dropbox.APIURL,
		ContentURL:        cfg.Dropbox.ContentURL,
		Timeout:           cfg.HTTP.Timeout.Duration,
		Retries:           cfg.HTTP.Retries,
		RetryWait:         cfg.HTTP.RetryWait.Duration,
		RetryMaxWait:      cfg.HTTP.RetryMaxWait.Duration,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	}
}

// Client talks to the Dropbox API v2. RPC calls go through a retrying resty
// client; uploads and downloads use a second client without retries since
// their bodies are streams.
type Client struct {
	rpc     *resty.Client
	content *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

var _ remote.Service = (*Client)(nil)

// New creates a client. It performs no network I/O.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	// Pooled transport shared by both clients
	transport := retryablehttp.NewClient().HTTPClient.Transport

	rpc := newResty(opts, transport).
		SetBaseURL(strings.TrimRight(opts.APIURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetRetryAfter(retryAfter(opts.RetryWait, opts.RetryMaxWait)).
		AddRetryCondition(shouldRetry)

	content := newResty(opts, transport).
		SetBaseURL(strings.TrimRight(opts.ContentURL, "/"))

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	breaker := resilience.New("dropbox", resilience.Settings{
		Trials:   1,
		Window:   60 * time.Second,
		Cooldown: 30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		Failure: isOutage,
		Logger:  logger,
	})

	return &Client{
		rpc:     rpc,
		content: content,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

func newResty(opts Options, transport http.RoundTripper) *resty.Client {
	return resty.New().
		SetTransport(transport).
		SetAuthToken(opts.Token).
		SetHeader("User-Agent", userAgent+" ("+opts.AppName+")").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
}

// shouldRetry applies retryablehttp's policy: connection errors, 429 and 5xx
// (except 501) are retried; 409 endpoint errors never are.
func shouldRetry(resp *resty.Response, err error) bool {
	ctx := context.Background()
	var raw *http.Response
	if resp != nil {
		raw = resp.RawResponse
		if resp.Request != nil {
			ctx = resp.Request.Context()
		}
	}
	if raw == nil && err == nil {
		return false
	}
	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
	return retry
}

// retryAfter honors Retry-After on 429/503 and otherwise backs off exponentially.
func retryAfter(minWait, maxWait time.Duration) resty.RetryAfterFunc {
	return func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		var raw *http.Response
		attempt := 1
		if resp != nil {
			raw = resp.RawResponse
			if resp.Request != nil {
				attempt = resp.Request.Attempt
			}
		}
		return retryablehttp.DefaultBackoff(minWait, maxWait, attempt, raw), nil
	}
}

// isOutage decides which failures count against the breaker.
func isOutage(err error) bool {
	if err == nil {
		return false
	}
	rerr := remote.AsError(err)
	return rerr.Kind == remote.ErrService
}

// do runs one API call under the limiter, the breaker and a metrics timer.
func (c *Client) do(ctx context.Context, op string, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return remote.NewServiceError("rate limit wait: "+err.Error(), err)
	}

	call := id.NewCallID()
	timer := monitoring.NewTimer(c.metrics, op)
	err := c.breaker.Do(fn)
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		err = remote.NewServiceError("dropbox unavailable: circuit breaker open", err)
	}

	result := "ok"
	if err != nil {
		result = remote.AsError(err).Kind.String()
	}
	d := timer.Stop(result)

	if err != nil {
		c.logger.Debug("dropbox call failed",
			zap.String("call_id", call.String()),
			zap.String("op", op),
			zap.Duration("duration", d),
			zap.Error(err))
		return err
	}
	c.logger.Debug("dropbox call",
		zap.String("call_id", call.String()),
		zap.String("op", op),
		zap.Duration("duration", d))
	return nil
}

// rpcCall posts arg to an RPC endpoint and decodes the result into out.
func (c *Client) rpcCall(ctx context.Context, op, endpoint string, family errorFamily, arg, out interface{}) error {
	return c.do(ctx, op, func() error {
		req := c.rpc.R().SetContext(ctx)
		if arg != nil {
			req.SetHeader("Content-Type", "application/json").SetBody(arg)
		}
		resp, err := req.Post(endpoint)
		if err != nil {
			return transportError(op, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return decodeError(family, resp.StatusCode(), resp.Body())
		}
		if out == nil {
			return nil
		}
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return remote.Errorf("%s: decode response: %v", op, err)
		}
		return nil
	})
}

func transportError(op string, err error) error {
	return remote.NewServiceError(fmt.Sprintf("%s: %v", op, err), err)
}
